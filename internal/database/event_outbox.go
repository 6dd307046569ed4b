package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/avoran/folio/internal/domain"
	"github.com/avoran/folio/internal/events"
)

// EventOutbox persists domain events in the same transaction as the
// state change that produced them. An external publisher drains pending
// rows and marks them published; this package never publishes anything.
//
// Payloads are stored as msgpack blobs keyed by the envelope columns.
type EventOutbox struct {
	handle *txHandle
	log    zerolog.Logger
}

func newEventOutbox(handle *txHandle, log zerolog.Logger) *EventOutbox {
	return &EventOutbox{
		handle: handle,
		log:    log.With().Str("repo", "event_outbox").Logger(),
	}
}

// Append stores an event. The write becomes durable together with the
// rest of the unit of work, or not at all.
func (r *EventOutbox) Append(e events.Event) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	blob, err := encodePayload(e.Payload)
	if err != nil {
		return domain.NewInternalError("failed to encode event payload", err).
			WithContext("event_id", e.ID).
			WithContext("event_type", string(e.Type))
	}

	_, err = tx.Exec(`INSERT INTO event_outbox (event_id, event_type, occurred_at, sequence, payload)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), timeToDB(e.OccurredAt), e.Sequence, blob)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", e.ID, err)
	}
	return nil
}

// ListPending returns unpublished events in occurrence order, at most
// limit (0 = no limit).
func (r *EventOutbox) ListPending(limit int) ([]events.Event, error) {
	tx, err := r.handle.guard()
	if err != nil {
		return nil, err
	}

	query := `SELECT event_id, event_type, occurred_at, sequence, payload
		FROM event_outbox WHERE published_at IS NULL ORDER BY occurred_at, sequence`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	defer rows.Close()

	var pending []events.Event
	for rows.Next() {
		var e events.Event
		var eventType, occurredAt string
		var blob []byte
		if err := rows.Scan(&e.ID, &eventType, &occurredAt, &e.Sequence, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = events.EventType(eventType)
		if e.OccurredAt, err = timeFromDB(occurredAt); err != nil {
			return nil, err
		}
		if e.Payload, err = decodePayload(e.Type, blob); err != nil {
			return nil, fmt.Errorf("failed to decode payload of event %s: %w", e.ID, err)
		}
		pending = append(pending, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return pending, nil
}

// MarkPublished records that the external publisher delivered an event.
func (r *EventOutbox) MarkPublished(eventID string) error {
	tx, err := r.handle.guard()
	if err != nil {
		return err
	}

	res, err := tx.Exec(`UPDATE event_outbox SET published_at = ? WHERE event_id = ? AND published_at IS NULL`,
		timeToDB(time.Now()), eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event %s published: %w", eventID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("pending event", eventID)
	}
	return nil
}

// encodePayload converts a typed payload to a msgpack map blob. Going
// through the JSON form keeps the stored keys identical to the
// serialized event contract.
func encodePayload(p events.EventData) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(jsonBytes, &m); err != nil {
		return nil, err
	}
	return msgpack.Marshal(m)
}

func decodePayload(t events.EventType, blob []byte) (events.EventData, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := msgpack.Unmarshal(blob, &m); err != nil {
		return nil, err
	}
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	payload := events.NewPayload(t)
	if err := json.Unmarshal(jsonBytes, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
