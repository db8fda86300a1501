package service

import (
	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/repository"
)

// PerformanceService maintains the rolling (offer type, segment) and
// (offer type, message) aggregates and answers "what works best" queries.
type PerformanceService struct {
	perfRepo *repository.PerformanceRepository
	cfg      *config.Config
}

func NewPerformanceService(perfRepo *repository.PerformanceRepository, cfg *config.Config) *PerformanceService {
	return &PerformanceService{
		perfRepo: perfRepo,
		cfg:      cfg,
	}
}

// RecordOutcome folds one decision into the aggregates: the per-segment row,
// the all-segments rollup, and the message template row. Synthetic
// cancel_attempt events carry no offer outcome and are skipped.
func (s *PerformanceService) RecordOutcome(event *model.OfferEvent, segment model.Segment, message string) error {
	if event.IsSynthetic() {
		return nil
	}

	if err := s.perfRepo.RecordOfferOutcome(event.OfferType, model.SegmentAll, event.Accepted, event.RevenueSavedCents); err != nil {
		return err
	}
	if segment != "" {
		if err := s.perfRepo.RecordOfferOutcome(event.OfferType, segment.String(), event.Accepted, event.RevenueSavedCents); err != nil {
			return err
		}
	}

	return s.perfRepo.RecordMessageOutcome(event.OfferType, message, event.Accepted)
}

// RecommendBestOffer consults the performance table for the segment first
// and falls back to the static value-tier rules when there is not enough
// evidence yet.
func (s *PerformanceService) RecommendBestOffer(segment model.Segment) (*dto.RecommendationResponse, error) {
	minSample := int64(s.cfg.Retention.RecommendMinSample)

	rows, err := s.perfRepo.BestBySegment(segment.String(), minSample)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		best := rows[0]
		return &dto.RecommendationResponse{
			OfferType:      best.OfferType,
			Source:         "performance",
			AcceptanceRate: best.AcceptanceRate,
			SampleSize:     best.ShownCount,
		}, nil
	}

	return &dto.RecommendationResponse{
		OfferType: ruleFallback(segment).String(),
		Source:    "rules",
	}, nil
}

// BestMessage returns the best-converting template for an offer type, if one
// has enough impressions to trust.
func (s *PerformanceService) BestMessage(offerType model.OfferType) (string, bool, error) {
	minShown := int64(s.cfg.Retention.RecommendMinSample)

	row, err := s.perfRepo.BestMessage(offerType.String(), minShown)
	if err != nil {
		return "", false, err
	}
	if row == nil {
		return "", false, nil
	}
	return row.Message, true, nil
}

func (s *PerformanceService) ListOffers() ([]dto.OfferPerformanceView, error) {
	rows, err := s.perfRepo.ListOffers()
	if err != nil {
		return nil, err
	}

	views := make([]dto.OfferPerformanceView, 0, len(rows))
	for _, row := range rows {
		segment := row.Segment
		if segment == model.SegmentAll {
			segment = "all"
		}
		views = append(views, dto.OfferPerformanceView{
			OfferType:         row.OfferType,
			Segment:           segment,
			ShownCount:        row.ShownCount,
			AcceptedCount:     row.AcceptedCount,
			AcceptanceRate:    row.AcceptanceRate,
			AvgRevenueSaved:   model.Amount(row.AvgSavedCents),
			TotalRevenueSaved: model.Amount(row.TotalSavedCents),
		})
	}
	return views, nil
}

func (s *PerformanceService) ListMessages() ([]dto.MessagePerformanceView, error) {
	rows, err := s.perfRepo.ListMessages()
	if err != nil {
		return nil, err
	}

	views := make([]dto.MessagePerformanceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, dto.MessagePerformanceView{
			OfferType:      row.OfferType,
			Message:        row.Message,
			ShownCount:     row.ShownCount,
			AcceptedCount:  row.AcceptedCount,
			AcceptanceRate: row.AcceptanceRate,
		})
	}
	return views, nil
}

// ruleFallback maps a segment onto the leading offer of its value tier.
func ruleFallback(segment model.Segment) model.OfferType {
	switch segment {
	case model.SegmentHighValue:
		return model.OfferDiscount
	case model.SegmentMediumValue:
		return model.OfferPause
	default:
		return model.OfferDowngrade
	}
}
