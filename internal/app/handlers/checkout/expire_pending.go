package checkout

import (
	"context"
	"log/slog"
	"time"

	"riide/internal/app/commands"
	"riide/internal/app/handlers/support"
	"riide/internal/app/outbox"
	"riide/internal/app/policies"
	domainbooking "riide/internal/domain/booking"
	"riide/internal/domain/shared/events"
)

const expirePendingKey = "checkout.expire_pending"

// ExpirePendingCommand cancels checkouts that never received a payment outcome.
type ExpirePendingCommand struct{}

func (c ExpirePendingCommand) Key() string { return expirePendingKey }

type ExpirePendingResult struct {
	Cancelled []string `json:"cancelled"`
}

type ExpirePendingHandler struct {
	Clock   policies.Clock
	TTL     time.Duration
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ExpirePendingHandler) Handle(ctx context.Context, _ ExpirePendingCommand) (*ExpirePendingResult, error) {
	result := &ExpirePendingResult{}
	if h.TTL <= 0 {
		return result, nil
	}
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	stale, err := unit.Bookings().List(ctx, domainbooking.Filter{
		Status:        domainbooking.StatusPending,
		CreatedBefore: now.Add(-h.TTL),
	})
	if err != nil {
		return nil, err
	}
	var pending events.Batch
	for _, b := range stale {
		if !b.Expired(now, h.TTL) {
			continue
		}
		if err := b.Cancel("checkout expired", now); err != nil {
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return nil, err
		}
		pending.Pull(b)
		result.Cancelled = append(result.Cancelled, string(b.ID))
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}
	if len(result.Cancelled) > 0 {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.InfoContext(ctx, "expired pending checkouts", "count", len(result.Cancelled))
	}
	return result, nil
}

var _ commands.Handler[ExpirePendingCommand, *ExpirePendingResult] = (*ExpirePendingHandler)(nil)
