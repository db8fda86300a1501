package model

import (
	"time"
)

// Subscription lifecycle statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionPaused   = "paused"
	SubscriptionCanceled = "canceled"
)

// Subscription belongs to exactly one user and is created lazily the first
// time the user enters a retention flow or a billing event arrives.
// ValueCents is the monthly value in integer cents; nil means unknown.
type Subscription struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	ValueCents     *int64    `json:"value_cents,omitempty"`
	Status         string    `gorm:"size:20;default:active;index" json:"status"`
	CancelAttempts int       `gorm:"default:0" json:"cancel_attempts"` // monotonic
	BillingRef     string    `gorm:"size:100" json:"billing_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Value returns the monthly value in cents, 0 when unknown.
func (s *Subscription) Value() int64 {
	if s == nil || s.ValueCents == nil {
		return 0
	}
	return *s.ValueCents
}
