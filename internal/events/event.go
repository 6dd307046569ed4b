// Package events provides the domain-event infrastructure: an immutable
// event envelope with a total ordering, typed payloads, and canonical
// serialization for handoff to an external publisher. Nothing in this
// package publishes anything.
package events

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType tags an event with the business fact it records.
type EventType string

const (
	StockAdded          EventType = "stock.added"
	TransactionRecorded EventType = "transaction.recorded"
	TargetSet           EventType = "target.set"
	BalanceRecorded     EventType = "balance.recorded"
	PortfolioValued     EventType = "portfolio.valued"
	JournalEntryAdded   EventType = "journal.entry_added"
)

// EventData is implemented by all typed event payloads.
type EventData interface {
	// EventType returns the event type this data is associated with.
	EventType() EventType
}

// Event is an immutable record of a business-significant occurrence.
// Once created it is never mutated; it is owned by the caller until
// handed to an external publishing collaborator.
type Event struct {
	ID         string    `json:"event_id"`
	Type       EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Sequence   uint64    `json:"sequence"`
	Payload    EventData `json:"payload"`
}

// Source stamps new events with a fresh id, the current time, and a
// monotonically increasing sequence number that breaks timestamp ties.
// One Source is created at bootstrap and injected; there is no package
// global. Safe for concurrent use.
type Source struct {
	seq atomic.Uint64
	now func() time.Time
}

// NewSource creates an event source backed by the wall clock.
func NewSource() *Source {
	return &Source{now: time.Now}
}

// NewSourceWithClock creates an event source with an injected clock.
func NewSourceWithClock(now func() time.Time) *Source {
	return &Source{now: now}
}

// New creates an immutable event for the given payload.
func (s *Source) New(data EventData) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       data.EventType(),
		OccurredAt: s.now().UTC(),
		Sequence:   s.seq.Add(1),
		Payload:    data,
	}
}

// Compare defines the total order between two events: by occurrence time
// first, then by sequence number to break timestamp ties.
func Compare(a, b Event) int {
	if a.OccurredAt.Before(b.OccurredAt) {
		return -1
	}
	if a.OccurredAt.After(b.OccurredAt) {
		return 1
	}
	switch {
	case a.Sequence < b.Sequence:
		return -1
	case a.Sequence > b.Sequence:
		return 1
	default:
		return 0
	}
}

// Serialize returns the canonical JSON form: fixed envelope key order,
// RFC 3339 UTC timestamp, payload keys in their declared order. This is
// the wire form consumed by the external event sink.
func (e Event) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

// MarshalJSON pins the timestamp encoding to RFC 3339 nanoseconds in UTC.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	aux := struct {
		alias
		OccurredAt string `json:"occurred_at"`
	}{
		alias:      alias(e),
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes an envelope, reconstructing the typed payload
// from the event type. Unknown types fall back to GenericEventData.
func (e *Event) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID         string          `json:"event_id"`
		Type       EventType       `json:"event_type"`
		OccurredAt time.Time       `json:"occurred_at"`
		Sequence   uint64          `json:"sequence"`
		Payload    json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.ID = aux.ID
	e.Type = aux.Type
	e.OccurredAt = aux.OccurredAt
	e.Sequence = aux.Sequence

	if len(aux.Payload) == 0 {
		e.Payload = nil
		return nil
	}

	payload := NewPayload(aux.Type)
	if err := json.Unmarshal(aux.Payload, payload); err != nil {
		return err
	}
	e.Payload = payload
	return nil
}

// NewPayload returns an empty typed payload for the given event type,
// ready to be decoded into. Unknown types get a GenericEventData.
func NewPayload(t EventType) EventData {
	switch t {
	case StockAdded:
		return &StockAddedData{}
	case TransactionRecorded:
		return &TransactionRecordedData{}
	case TargetSet:
		return &TargetSetData{}
	case BalanceRecorded:
		return &BalanceRecordedData{}
	case PortfolioValued:
		return &PortfolioValuedData{}
	case JournalEntryAdded:
		return &JournalEntryAddedData{}
	default:
		return &GenericEventData{Type: t}
	}
}

// GenericEventData is the fallback payload for event types this package
// does not know a concrete struct for.
type GenericEventData struct {
	Type EventType      `json:"-"`
	Data map[string]any `json:"-"`
}

// EventType returns the carried event type.
func (d *GenericEventData) EventType() EventType { return d.Type }

// MarshalJSON flattens the generic payload.
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON captures an arbitrary payload mapping.
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
