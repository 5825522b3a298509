package events

import "time"

// DomainEvent is a fact recorded by an aggregate. EventName doubles as the CloudEvents
// type (suffixed with the schema version) and its first segment selects the topic.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates to buffer events until the unit of work commits.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

// PullEvents returns the buffered events and clears the buffer.
func (r *EventRecorder) PullEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}

type Source interface {
	PullEvents() []DomainEvent
}

// Batch gathers events pulled from several aggregates touched by one command.
type Batch []DomainEvent

func (b *Batch) Pull(src Source) {
	*b = append(*b, src.PullEvents()...)
}
