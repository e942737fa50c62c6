package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// LedgerEvent announces a successful change to one of the ledger collections.
// Consumers reload the collection they care about instead of trusting a payload.
type LedgerEvent struct {
	Collection core.Collection `json:"collection"`
	Operation  string          `json:"operation"`
	ID         string          `json:"id,omitempty"`
	Message    string          `json:"message"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewLedgerEvent builds an event from a mutation notification.
func NewLedgerEvent(n core.Notification) *LedgerEvent {
	ts := n.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerEvent{
		Collection: n.Collection,
		Operation:  n.Operation,
		ID:         n.ID,
		Message:    n.Message,
		Timestamp:  ts,
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
