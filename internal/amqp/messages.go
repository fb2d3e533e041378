package amqp

import (
	"encoding/json"
	"time"
)

// BudgetChangedMessage announces that a month's plan was mutated and
// persisted. It carries only the month key and revision; consumers fetch the
// full state themselves.
type BudgetChangedMessage struct {
	MonthKey  string    `json:"monthKey"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetChangedMessage creates a change message for the given month
func NewBudgetChangedMessage(monthKey string, revision int64) *BudgetChangedMessage {
	return &BudgetChangedMessage{
		MonthKey:  monthKey,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetChangedMessageFromJSON creates a message from JSON bytes
func BudgetChangedMessageFromJSON(data []byte) (*BudgetChangedMessage, error) {
	var msg BudgetChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
