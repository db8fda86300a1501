package repository

import (
	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
)

type FlowRepository struct {
	db *gorm.DB
}

func NewFlowRepository(db *gorm.DB) *FlowRepository {
	return &FlowRepository{db: db}
}

// Create stores the flow and its steps in one transaction.
func (r *FlowRepository) Create(flow *model.Flow) error {
	return r.db.Create(flow).Error
}

func (r *FlowRepository) GetByID(id int64) (*model.Flow, error) {
	var flow model.Flow
	err := r.db.Preload("Steps", stepOrder).Where("id = ?", id).First(&flow).Error
	if err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *FlowRepository) List(language string, page, pageSize int) ([]model.Flow, int64, error) {
	query := r.db.Model(&model.Flow{})
	if language != "" {
		query = query.Where("language = ?", language)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var flows []model.Flow
	err := query.Preload("Steps", stepOrder).
		Order("ranking_score DESC").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&flows).Error
	if err != nil {
		return nil, 0, err
	}

	return flows, total, nil
}

// SelectActive picks the highest-ranked eligible flow for a language. The
// created_at/id tie-breakers keep the choice deterministic for equal scores.
func (r *FlowRepository) SelectActive(language string) (*model.Flow, error) {
	var flow model.Flow
	err := r.db.Preload("Steps", stepOrder).
		Where("language = ? AND ranking_score > 0", language).
		Order("ranking_score DESC").Order("created_at DESC").Order("id DESC").
		First(&flow).Error
	if err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *FlowRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Flow{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateScore persists a recomputed ranking score.
func (r *FlowRepository) UpdateScore(id int64, score int) error {
	return r.db.Model(&model.Flow{}).Where("id = ?", id).
		Update("ranking_score", score).Error
}

// ReplaceSteps swaps a flow's step list atomically.
func (r *FlowRepository) ReplaceSteps(flowID int64, steps []model.FlowStep) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", flowID).Delete(&model.FlowStep{}).Error; err != nil {
			return err
		}
		for i := range steps {
			steps[i].ID = 0
			steps[i].FlowID = flowID
		}
		if len(steps) == 0 {
			return nil
		}
		return tx.Create(&steps).Error
	})
}

// ListIDsWithEvents returns flows that have at least one non-synthetic offer
// event, for the nightly ranking sweep.
func (r *FlowRepository) ListIDsWithEvents() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.OfferEvent{}).
		Where("offer_type <> ?", model.EventCancelAttempt).
		Distinct("flow_id").
		Pluck("flow_id", &ids).Error
	return ids, err
}

func stepOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
