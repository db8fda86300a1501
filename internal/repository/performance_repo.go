package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paxiitdevteam/retentionos/internal/model"
)

type PerformanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// RecordOfferOutcome folds one observed outcome into the (offer type,
// segment) aggregate. Counters move via single-statement atomic increments so
// concurrent decisions cannot lose updates; the derived columns are then
// recomputed purely from the counters, which makes concurrent recomputes
// converge to the same values.
func (r *PerformanceRepository) RecordOfferOutcome(offerType, segment string, accepted bool, savedCents int64) error {
	row := model.OfferPerformance{OfferType: offerType, Segment: segment}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "offer_type"}, {Name: "segment"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return err
	}

	accepts := 0
	if accepted {
		accepts = 1
	} else {
		savedCents = 0
	}

	err := r.db.Model(&model.OfferPerformance{}).
		Where("offer_type = ? AND segment = ?", offerType, segment).
		Updates(map[string]interface{}{
			"shown_count":       gorm.Expr("shown_count + 1"),
			"accepted_count":    gorm.Expr("accepted_count + ?", accepts),
			"total_saved_cents": gorm.Expr("total_saved_cents + ?", savedCents),
			"updated_at":        time.Now().UTC(),
		}).Error
	if err != nil {
		return err
	}

	return r.deriveOffer(offerType, segment)
}

func (r *PerformanceRepository) deriveOffer(offerType, segment string) error {
	return r.db.Model(&model.OfferPerformance{}).
		Where("offer_type = ? AND segment = ? AND shown_count > 0", offerType, segment).
		Updates(map[string]interface{}{
			"acceptance_rate": gorm.Expr("accepted_count * 100.0 / shown_count"),
			"avg_saved_cents": gorm.Expr("CASE WHEN accepted_count > 0 THEN total_saved_cents / accepted_count ELSE 0 END"),
		}).Error
}

func (r *PerformanceRepository) GetOffer(offerType, segment string) (*model.OfferPerformance, error) {
	var row model.OfferPerformance
	err := r.db.Where("offer_type = ? AND segment = ?", offerType, segment).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// BestBySegment returns performance rows for a segment with enough evidence,
// best acceptance first. Falls through to the caller's rule table when empty.
func (r *PerformanceRepository) BestBySegment(segment string, minSample int64) ([]model.OfferPerformance, error) {
	var rows []model.OfferPerformance
	err := r.db.Where("segment = ? AND shown_count >= ?", segment, minSample).
		Order("acceptance_rate DESC").Order("shown_count DESC").Order("offer_type ASC").
		Find(&rows).Error
	return rows, err
}

func (r *PerformanceRepository) ListOffers() ([]model.OfferPerformance, error) {
	var rows []model.OfferPerformance
	err := r.db.Order("segment ASC").Order("acceptance_rate DESC").Find(&rows).Error
	return rows, err
}

// RecordMessageOutcome updates the per-template aggregate the same way.
func (r *PerformanceRepository) RecordMessageOutcome(offerType, message string, accepted bool) error {
	if message == "" {
		return nil
	}

	row := model.MessagePerformance{OfferType: offerType, Message: message}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "offer_type"}, {Name: "message"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return err
	}

	accepts := 0
	if accepted {
		accepts = 1
	}

	err := r.db.Model(&model.MessagePerformance{}).
		Where("offer_type = ? AND message = ?", offerType, message).
		Updates(map[string]interface{}{
			"shown_count":    gorm.Expr("shown_count + 1"),
			"accepted_count": gorm.Expr("accepted_count + ?", accepts),
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		return err
	}

	return r.db.Model(&model.MessagePerformance{}).
		Where("offer_type = ? AND message = ? AND shown_count > 0", offerType, message).
		Update("acceptance_rate", gorm.Expr("accepted_count * 100.0 / shown_count")).Error
}

// BestMessage returns the best-converting template for an offer type with at
// least minShown impressions, or nil when there is no such template.
func (r *PerformanceRepository) BestMessage(offerType string, minShown int64) (*model.MessagePerformance, error) {
	var row model.MessagePerformance
	err := r.db.Where("offer_type = ? AND shown_count >= ?", offerType, minShown).
		Order("acceptance_rate DESC").Order("shown_count DESC").Order("id ASC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PerformanceRepository) ListMessages() ([]model.MessagePerformance, error) {
	var rows []model.MessagePerformance
	err := r.db.Order("offer_type ASC").Order("acceptance_rate DESC").Find(&rows).Error
	return rows, err
}
