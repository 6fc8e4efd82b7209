package amqp

import (
	"encoding/json"
	"time"

	"moneta/internal/core"
)

// RoutingKeyBudgetRolledOver tags rollover events on the exchange.
const RoutingKeyBudgetRolledOver = "budget.rolled_over"

// BudgetRolloverMessage announces that a recurring budget was superseded.
// Consumers fetch full records by id when they need more than this.
type BudgetRolloverMessage struct {
	PredecessorID string    `json:"predecessor_id"`
	SuccessorID   string    `json:"successor_id"`
	UserID        string    `json:"user_id"`
	CategoryID    string    `json:"category_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewBudgetRolloverMessage(predecessor, successor core.Budget) *BudgetRolloverMessage {
	return &BudgetRolloverMessage{
		PredecessorID: predecessor.ID,
		SuccessorID:   successor.ID,
		UserID:        successor.UserID,
		CategoryID:    successor.CategoryID,
		StartDate:     successor.StartDate,
		EndDate:       successor.EndDate,
		Timestamp:     time.Now(),
	}
}

func (m *BudgetRolloverMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetRolloverMessageFromJSON(data []byte) (*BudgetRolloverMessage, error) {
	var msg BudgetRolloverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
