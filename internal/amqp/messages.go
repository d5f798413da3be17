package amqp

import (
	"encoding/json"
	"time"
)

// Event actions published after a successful transaction mutation.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is the message published for every transaction
// mutation. The audit worker persists these; losing one never fails the
// originating request.
type TransactionEvent struct {
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
	OwnerID       string    `json:"owner_id"`
	Type          string    `json:"type"`
	AmountMillis  int64     `json:"amount_millis"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(action, transactionID, ownerID, txType string, amountMillis int64) *TransactionEvent {
	return &TransactionEvent{
		Action:        action,
		TransactionID: transactionID,
		OwnerID:       ownerID,
		Type:          txType,
		AmountMillis:  amountMillis,
		OccurredAt:    time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
