package payload

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Wildcard subscribes to every event
const Wildcard = "*"

// TimestampFormat is ISO 8601 in UTC with millisecond precision, e.g. 2026-03-01T12:00:00.000Z
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// eventTypePattern validates event names: hierarchical, full-stop delimited, [a-zA-Z0-9_]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// Envelope is the body POSTed to subscribers
type Envelope struct {
	// Event is the full-stop delimited event name, e.g. "invoice.paid", "link.created"
	Event string `json:"event"`

	// Timestamp is when the event was dispatched
	Timestamp time.Time `json:"timestamp"`

	// Data is the event data
	Data json.RawMessage `json:"data"`
}

// New builds an envelope for event, serializing data
func New(event string, data any, at time.Time) (Envelope, error) {
	if err := ValidateEventName(event); err != nil {
		return Envelope{}, err
	}

	raw, ok := data.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, fmt.Errorf("marshaling data: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 || !json.Valid(raw) {
		return Envelope{}, fmt.Errorf("data must be valid JSON")
	}

	return Envelope{
		Event:     event,
		Timestamp: at.UTC(),
		Data:      raw,
	}, nil
}

// MarshalJSON keeps the field order event, timestamp, data and formats the timestamp
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Event     string          `json:"event"`
		Timestamp string          `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}{
		Event:     e.Event,
		Timestamp: e.Timestamp.UTC().Format(TimestampFormat),
		Data:      e.Data,
	})
}

// UnmarshalJSON parses an envelope produced by MarshalJSON
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var aux struct {
		Event     string          `json:"event"`
		Timestamp string          `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unmarshaling envelope: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}

	e.Event = aux.Event
	e.Timestamp = ts
	e.Data = aux.Data
	return nil
}

// Bytes returns the serialized envelope; these are the bytes that get signed and sent
func (e Envelope) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// Parse parses and validates a serialized envelope
func Parse(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, err
	}
	if err := ValidateEventName(e.Event); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// Matches reports whether a subscription to events receives event: exact name or the wildcard
func Matches(events []string, event string) bool {
	for _, e := range events {
		if e == event || e == Wildcard {
			return true
		}
	}
	return false
}

// ValidateEventName validates an event name as dispatched
func ValidateEventName(event string) error {
	if event == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if !eventTypePattern.MatchString(event) {
		return fmt.Errorf("event name must be hierarchical and contain only [a-zA-Z0-9_.]: %s", event)
	}
	return nil
}

// ValidateSubscription validates an entry of a subscription's event list; the wildcard is allowed
func ValidateSubscription(event string) error {
	if event == Wildcard {
		return nil
	}
	return ValidateEventName(event)
}
