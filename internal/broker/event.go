package broker

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event types double as websocket topics.
const (
	TypeRecord = "record"
	TypeImport = "import"
	TypeIndex  = "index"
)

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionImported  = "imported"
	ActionReindexed = "reindexed"
)

type Event struct {
	Type       string    `json:"type"`
	Action     string    `json:"action"`
	Collection string    `json:"collection,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	Message    string    `json:"message"`
	Count      int       `json:"count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RecordEvent describes a single CRUD change.
func RecordEvent(action, collection, id, label string) Event {
	return Event{
		Type:       TypeRecord,
		Action:     action,
		Collection: collection,
		RecordID:   id,
		Message:    fmt.Sprintf("%s %s %s", collection, label, action),
		Timestamp:  time.Now().UTC(),
	}
}

// ImportEvent summarizes one imported file.
func ImportEvent(collection, source string, count int) Event {
	return Event{
		Type:       TypeImport,
		Action:     ActionImported,
		Collection: collection,
		Message:    fmt.Sprintf("%d registros importados de %s", count, source),
		Count:      count,
		Timestamp:  time.Now().UTC(),
	}
}

func IndexEvent(count int) Event {
	return Event{
		Type:      TypeIndex,
		Action:    ActionReindexed,
		Message:   fmt.Sprintf("%d trechos indexados", count),
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

// Headers mirror the routing fields so consumers can filter without
// decoding the body.
func (e Event) Headers() amqp.Table {
	return amqp.Table{
		"type":       e.Type,
		"action":     e.Action,
		"collection": e.Collection,
		"record_id":  e.RecordID,
		"timestamp":  e.Timestamp.Format(time.RFC3339),
	}
}

func DecodeEvent(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}
