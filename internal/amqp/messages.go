package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LedgerEventMessage is the lightweight notification published after a
// balance-changing operation commits. It carries only identifiers and the
// amount; the worker fetches the full transaction from the store.
type LedgerEventMessage struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	EntityID      uuid.UUID `json:"entity_id"`
	Type          string    `json:"type"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(transactionID, entityID uuid.UUID, txType string, amountCents int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		TransactionID: transactionID,
		EntityID:      entityID,
		Type:          txType,
		AmountCents:   amountCents,
		Timestamp:     time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
