package model

import (
	"time"
)

// ChurnReason is recorded only when a user declines all offers. Immutable.
type ChurnReason struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	FlowID     *int64    `gorm:"index" json:"flow_id,omitempty"`
	ReasonCode string    `gorm:"size:50;not null" json:"reason_code"`
	ReasonText string    `gorm:"type:text" json:"reason_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ChurnReason) TableName() string {
	return "churn_reasons"
}
