package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// OrderingActivity stores the canonical sequence for an ordering activity.
type OrderingActivity struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ActivityID uint           `gorm:"not null;uniqueIndex" json:"activity_id"`
	Sequence   datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SetSequence serializes the canonical tokens into the JSON storage column.
func (o *OrderingActivity) SetSequence(tokens []string) {
	if tokens == nil {
		tokens = []string{}
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		o.Sequence = datatypes.JSON([]byte("[]"))
		return
	}
	o.Sequence = datatypes.JSON(data)
}

// Tokens returns a fresh copy of the canonical sequence.
func (o OrderingActivity) Tokens() []string {
	if len(o.Sequence) == 0 {
		return nil
	}

	var tokens []string
	if err := json.Unmarshal(o.Sequence, &tokens); err != nil {
		return nil
	}

	return tokens
}
