package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appoutbox "riide/internal/app/outbox"
	infraoutbox "riide/internal/infra/outbox"
)

// Outbox is a process-local outbox: records are delivered by the outbox worker like the
// database-backed stores, but do not survive a restart.
type Outbox struct {
	mu       sync.Mutex
	messages map[string]*infraoutbox.Message
	notify   func()
}

func NewOutbox() *Outbox {
	return &Outbox{messages: make(map[string]*infraoutbox.Message)}
}

func (o *Outbox) OnFlush(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notify = fn
}

func (o *Outbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[record.ID] = &infraoutbox.Message{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     append([]byte(nil), record.Payload...),
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       infraoutbox.StateNew,
		NextAttempt: time.Now().UTC(),
	}
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	o.mu.Lock()
	notify := o.notify
	o.mu.Unlock()
	if notify != nil {
		notify()
	}
	return nil
}

// Claim hands out the oldest due message.
func (o *Outbox) Claim(_ context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	var due []*infraoutbox.Message
	for _, m := range o.messages {
		if (m.State == infraoutbox.StateNew || m.State == infraoutbox.StateFailed) && !m.NextAttempt.After(now) {
			due = append(due, m)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextAttempt.Equal(due[j].NextAttempt) {
			return due[i].OccurredAt.Before(due[j].OccurredAt)
		}
		return due[i].NextAttempt.Before(due[j].NextAttempt)
	})
	m := due[0]
	m.State = infraoutbox.StateClaimed
	m.ClaimedBy = workerID
	m.ClaimedAt = now
	out := *m
	return &out, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m, ok := o.messages[id]; ok {
		m.State = infraoutbox.StateSent
		m.SentAt = time.Now().UTC()
	}
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m, ok := o.messages[id]; ok {
		m.State = infraoutbox.StateFailed
		m.NextAttempt = next
		m.LastError = errMsg
		m.Attempts++
	}
	return nil
}

// Messages returns a snapshot of every record, sorted by occurrence.
func (o *Outbox) Messages() []infraoutbox.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.Message, 0, len(o.messages))
	for _, m := range o.messages {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
