package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/shared/events"
)

// BookingRepository keeps bookings in process memory. It stores copies so callers never
// share state with the store, and enforces optimistic versioning on writes.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(_ context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return clone(b), nil
}

// Save writes immediately. Inside a unit of work writes go through Unit instead.
func (r *BookingRepository) Save(_ context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkVersion(b); err != nil {
		return err
	}
	b.Version++
	r.items[b.ID] = clone(b)
	return nil
}

func (r *BookingRepository) List(_ context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0, len(r.items))
	for _, b := range r.items {
		if filter.Match(b) {
			out = append(out, clone(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *BookingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// apply commits a batch atomically: either every version matches or nothing is written.
func (r *BookingRepository) apply(batch map[domainbooking.BookingID]*domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range batch {
		if err := r.checkVersion(b); err != nil {
			return err
		}
	}
	for id, b := range batch {
		stored := clone(b)
		stored.Version++
		r.items[id] = stored
	}
	return nil
}

func (r *BookingRepository) checkVersion(b *domainbooking.Booking) error {
	current, exists := r.items[b.ID]
	switch {
	case !exists && b.Version != 0:
		return domainbooking.ErrVersionConflict
	case exists && current.Version != b.Version:
		return domainbooking.ErrVersionConflict
	}
	return nil
}

func clone(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.EventRecorder = events.EventRecorder{}
	return &c
}

func sortBookings(list []*domainbooking.Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
