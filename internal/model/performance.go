package model

import (
	"time"
)

// OfferPerformance is a rolling aggregate keyed by (offer type, segment).
// Segment "" means "all segments". Counters are only ever mutated with
// storage-layer atomic increments; AcceptanceRate and AvgSavedCents are
// derived from the counters, never accumulated in process memory.
type OfferPerformance struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	OfferType       string    `gorm:"size:20;not null;uniqueIndex:idx_offer_segment" json:"offer_type"`
	Segment         string    `gorm:"size:20;not null;default:'';uniqueIndex:idx_offer_segment" json:"segment"`
	ShownCount      int64     `gorm:"default:0" json:"shown_count"`
	AcceptedCount   int64     `gorm:"default:0" json:"accepted_count"`
	TotalSavedCents int64     `gorm:"default:0" json:"total_saved_cents"`
	AcceptanceRate  float64   `gorm:"default:0" json:"acceptance_rate"`
	AvgSavedCents   int64     `gorm:"default:0" json:"avg_saved_cents"` // running average per acceptance
	UpdatedAt       time.Time `json:"updated_at"`
}

func (OfferPerformance) TableName() string {
	return "offer_performances"
}

// MessagePerformance tracks how each canned message text converts per offer
// type, used to pick which template to surface.
type MessagePerformance struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	OfferType      string    `gorm:"size:20;not null;uniqueIndex:idx_offer_message" json:"offer_type"`
	Message        string    `gorm:"size:500;not null;uniqueIndex:idx_offer_message" json:"message"`
	ShownCount     int64     `gorm:"default:0" json:"shown_count"`
	AcceptedCount  int64     `gorm:"default:0" json:"accepted_count"`
	AcceptanceRate float64   `gorm:"default:0" json:"acceptance_rate"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MessagePerformance) TableName() string {
	return "message_performances"
}
