package memory

import (
	"context"
	"errors"
	"sync"

	"riide/internal/app/uow"
	domainbooking "riide/internal/domain/booking"
)

var (
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrReadOnly             = errors.New("memory: write in read-only unit of work")
	ErrUnitClosed           = errors.New("memory: unit of work already closed")
)

// Factory opens units over a shared BookingRepository.
type Factory struct {
	Bookings *BookingRepository
}

func (f Factory) Begin(_ context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Bookings == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		repo:     f.Bookings,
		readOnly: opts.ReadOnly,
		pending:  make(map[domainbooking.BookingID]*domainbooking.Booking),
	}, nil
}

// Unit buffers writes and applies them on Commit; Rollback drops them. Reads see the
// unit's own pending writes.
type Unit struct {
	mu       sync.Mutex
	repo     *BookingRepository
	readOnly bool
	closed   bool
	pending  map[domainbooking.BookingID]*domainbooking.Booking
}

func (u *Unit) Bookings() domainbooking.Repository {
	return unitBookings{unit: u}
}

func (u *Unit) Commit(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitClosed
	}
	u.closed = true
	if len(u.pending) == 0 {
		return nil
	}
	return u.repo.apply(u.pending)
}

func (u *Unit) Rollback(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	u.pending = nil
	return nil
}

type unitBookings struct {
	unit *Unit
}

func (b unitBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	b.unit.mu.Lock()
	staged, ok := b.unit.pending[id]
	b.unit.mu.Unlock()
	if ok {
		return clone(staged), nil
	}
	return b.unit.repo.ByID(ctx, id)
}

func (b unitBookings) Save(_ context.Context, booking *domainbooking.Booking) error {
	b.unit.mu.Lock()
	defer b.unit.mu.Unlock()
	if b.unit.readOnly {
		return ErrReadOnly
	}
	if b.unit.closed {
		return ErrUnitClosed
	}
	b.unit.pending[booking.ID] = clone(booking)
	return nil
}

func (b unitBookings) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	stored, err := b.unit.repo.List(ctx, domainbooking.Filter{})
	if err != nil {
		return nil, err
	}
	b.unit.mu.Lock()
	defer b.unit.mu.Unlock()
	out := make([]*domainbooking.Booking, 0, len(stored)+len(b.unit.pending))
	seen := make(map[domainbooking.BookingID]bool, len(stored))
	for _, s := range stored {
		seen[s.ID] = true
		if staged, ok := b.unit.pending[s.ID]; ok {
			s = clone(staged)
		}
		if filter.Match(s) {
			out = append(out, s)
		}
	}
	for id, staged := range b.unit.pending {
		if !seen[id] && filter.Match(staged) {
			out = append(out, clone(staged))
		}
	}
	sortBookings(out)
	return out, nil
}

var _ uow.UoWFactory = Factory{}
