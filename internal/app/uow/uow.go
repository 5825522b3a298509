package uow

import (
	"context"

	domainbooking "riide/internal/domain/booking"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The vehicle catalog
// and demand calendar are immutable and live outside it.
type UnitOfWork interface {
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (sessions, tx handles)
// through the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
