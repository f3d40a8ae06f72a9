package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionDeleted EventKind = "transaction.deleted"
)

// LedgerEvent announces a committed change to the transaction table. It
// carries only the id; consumers read the row back from the store.
type LedgerEvent struct {
	EventID       string    `json:"event_id"`
	Kind          EventKind `json:"kind"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind EventKind, transactionID int64) LedgerEvent {
	return LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          kind,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and sanity-checks a message body.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	if e.Kind != TransactionCreated && e.Kind != TransactionDeleted {
		return LedgerEvent{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.TransactionID <= 0 {
		return LedgerEvent{}, fmt.Errorf("invalid transaction id %d", e.TransactionID)
	}
	if _, err := uuid.Parse(e.EventID); err != nil {
		return LedgerEvent{}, fmt.Errorf("invalid event id %q: %w", e.EventID, err)
	}
	return e, nil
}
