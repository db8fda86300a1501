package repository

import (
	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
)

type OfferEventRepository struct {
	db *gorm.DB
}

func NewOfferEventRepository(db *gorm.DB) *OfferEventRepository {
	return &OfferEventRepository{db: db}
}

// Create appends an event. Events are never updated or deleted.
func (r *OfferEventRepository) Create(event *model.OfferEvent) error {
	return r.db.Create(event).Error
}

// ListByFlow returns all real (non-synthetic) offer events for a flow.
func (r *OfferEventRepository) ListByFlow(flowID int64) ([]model.OfferEvent, error) {
	var events []model.OfferEvent
	err := r.db.Where("flow_id = ? AND offer_type <> ?", flowID, model.EventCancelAttempt).
		Order("created_at ASC").Order("id ASC").
		Find(&events).Error
	return events, err
}

// RecentByUser returns up to limit real offer events for a user, newest
// first. Synthetic cancel_attempt markers are excluded: they are not offer
// outcomes.
func (r *OfferEventRepository) RecentByUser(userID int64, limit int) ([]model.OfferEvent, error) {
	var events []model.OfferEvent
	err := r.db.Where("user_id = ? AND offer_type <> ?", userID, model.EventCancelAttempt).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// LatestByFlow returns the most recent event on a flow, synthetic rows
// included. Used to infer the acting user when a decision arrives without
// one; the cancel_attempt row logged by startFlow carries exactly that user.
func (r *OfferEventRepository) LatestByFlow(flowID int64) (*model.OfferEvent, error) {
	var event model.OfferEvent
	err := r.db.Where("flow_id = ?", flowID).
		Order("created_at DESC").Order("id DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *OfferEventRepository) CountByFlow(flowID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.OfferEvent{}).
		Where("flow_id = ? AND offer_type <> ?", flowID, model.EventCancelAttempt).
		Count(&count).Error
	return count, err
}

// ListByUser returns every event for a user, newest first (dashboard detail
// view).
func (r *OfferEventRepository) ListByUser(userID int64, limit int) ([]model.OfferEvent, error) {
	var events []model.OfferEvent
	query := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}
