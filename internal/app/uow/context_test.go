package uow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "riide/internal/domain/booking"
)

type sessionKey struct{}

type stubUnit struct{ session string }

func (u *stubUnit) Bookings() domainbooking.Repository { return nil }
func (u *stubUnit) Commit(context.Context) error       { return nil }
func (u *stubUnit) Rollback(context.Context) error     { return nil }

func (u *stubUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, u.session)
}

func TestBind(t *testing.T) {
	ctx := context.Background()

	_, err := Require(ctx)
	assert.ErrorIs(t, err, ErrUnitOfWorkMissing)

	unit := &stubUnit{session: "s1"}
	bound := Bind(ctx, unit)
	got, err := Require(bound)
	require.NoError(t, err)
	assert.Same(t, unit, got)
	assert.Equal(t, "s1", bound.Value(sessionKey{}))
}
