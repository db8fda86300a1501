package repository

import (
	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
)

type ChurnReasonRepository struct {
	db *gorm.DB
}

func NewChurnReasonRepository(db *gorm.DB) *ChurnReasonRepository {
	return &ChurnReasonRepository{db: db}
}

func (r *ChurnReasonRepository) Create(reason *model.ChurnReason) error {
	return r.db.Create(reason).Error
}

func (r *ChurnReasonRepository) ListByUser(userID int64) ([]model.ChurnReason, error) {
	var reasons []model.ChurnReason
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reasons).Error
	return reasons, err
}

// CountByReason groups recorded reasons for the dashboard.
func (r *ChurnReasonRepository) CountByReason() (map[string]int64, error) {
	type row struct {
		ReasonCode string
		Count      int64
	}
	var rows []row
	err := r.db.Model(&model.ChurnReason{}).
		Select("reason_code, COUNT(*) as count").
		Group("reason_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ReasonCode] = r.Count
	}
	return counts, nil
}
