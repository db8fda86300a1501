package model

import (
	"time"
)

// User mirrors a customer of the host SaaS. ExternalID is the host's opaque
// identifier and the upsert key; users are never hard-deleted by the engine.
type User struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"size:100;uniqueIndex;not null" json:"external_id"`
	Email      *string   `gorm:"size:100" json:"email,omitempty"`
	Plan       string    `gorm:"size:50" json:"plan"`
	Region     string    `gorm:"size:50" json:"region"`
	Language   string    `gorm:"size:10;default:en" json:"language"`
	ChurnScore int       `gorm:"default:0" json:"churn_score"` // 0-100, written back by the churn scorer
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
