package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONMap stores a step's type-specific configuration as a JSON column
// (discount percentage, target plan, feedback category, ...).
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return nil
}

// Flow is a named, ordered sequence of offer steps shown to a cancelling
// user. RankingScore gates selection: 0 = inactive, >0 = eligible, higher
// wins.
type Flow struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Language     string     `gorm:"size:10;default:en;index" json:"language"`
	RankingScore int        `gorm:"default:0;index" json:"ranking_score"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Steps        []FlowStep `gorm:"foreignKey:FlowID" json:"steps,omitempty"`
}

func (Flow) TableName() string {
	return "flows"
}

// FlowStep is one offer inside a flow. Position preserves the authored order;
// the orchestrator reorders a copy per request, never the stored rows.
type FlowStep struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	FlowID    int64     `gorm:"not null;index" json:"flow_id"`
	Position  int       `gorm:"not null" json:"position"`
	OfferType OfferType `gorm:"size:20;not null" json:"offer_type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Config    JSONMap   `gorm:"type:json" json:"config,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (FlowStep) TableName() string {
	return "flow_steps"
}

// ConfigFloat reads a numeric config value, tolerating the float64/json.Number
// variance that comes back from different drivers.
func (s *FlowStep) ConfigFloat(key string) (float64, bool) {
	if s.Config == nil {
		return 0, false
	}
	switch v := s.Config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ConfigString reads a string config value.
func (s *FlowStep) ConfigString(key string) (string, bool) {
	if s.Config == nil {
		return "", false
	}
	v, ok := s.Config[key].(string)
	return v, ok && v != ""
}
