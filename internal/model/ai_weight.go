package model

import (
	"time"
)

// Churn factor weight names.
const (
	WeightBehavior       = "behavior_weight"
	WeightValue          = "value_weight"
	WeightHistory        = "history_weight"
	WeightCancelAttempts = "cancel_attempts_weight"
)

// AIWeight is a named coefficient for the churn scorer. The four weights are
// expected to sum to 1.0 but this is not enforced at write time; the scorer
// clamps its output instead.
type AIWeight struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Value     float64   `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AIWeight) TableName() string {
	return "ai_weights"
}
