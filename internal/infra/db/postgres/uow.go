package postgres

import (
	"context"
	"database/sql"
	"errors"

	"riide/internal/app/uow"
	domainbooking "riide/internal/domain/booking"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing database")

// Factory opens one sql.Tx per unit of work.
type Factory struct {
	DB       *sql.DB
	Bookings *BookingRepository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.Bookings == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	tx, err := f.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: opts.ReadOnly})
	if err != nil {
		return nil, err
	}
	return &Unit{tx: tx, bookings: f.Bookings}, nil
}

type Unit struct {
	tx       *sql.Tx
	bookings domainbooking.Repository
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(context.Context) error {
	return u.tx.Commit()
}

func (u *Unit) Rollback(context.Context) error {
	err := u.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// InjectContext binds the transaction so repositories, the outbox and the idempotency
// store write through it.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return contextWithTx(ctx, u.tx)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
