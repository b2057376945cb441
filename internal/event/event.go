package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source is stamped on every event produced by this service
const Source = "storefront"

// Event is the envelope written to Kafka
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Key           string          `json:"key"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// New wraps data in an envelope with a fresh id and timestamp
func New(eventType, key string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Key:       key,
		Version:   1,
		Timestamp: time.Now().UTC(),
		Source:    Source,
		Data:      raw,
	}, nil
}

// Marshal serializes the event to JSON
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
