package model

import (
	"time"
)

// OfferEvent is an immutable fact: which offer was shown to which user on
// which flow, and whether it was accepted. One row per shown offer plus one
// synthetic cancel_attempt row per interception. Append-only.
type OfferEvent struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	UserID            int64     `gorm:"not null;index" json:"user_id"`
	FlowID            int64     `gorm:"not null;index" json:"flow_id"`
	OfferType         string    `gorm:"size:20;not null;index" json:"offer_type"`
	Accepted          bool      `gorm:"default:false" json:"accepted"`
	RevenueSavedCents int64     `gorm:"default:0" json:"revenue_saved_cents"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

func (OfferEvent) TableName() string {
	return "offer_events"
}

// IsSynthetic reports whether this row is a cancel-attempt marker rather
// than a real offer outcome.
func (e *OfferEvent) IsSynthetic() bool {
	return e.OfferType == EventCancelAttempt
}
