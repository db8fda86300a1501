package service

import (
	"github.com/paxiitdevteam/retentionos/internal/model"
)

// Value thresholds in cents.
const (
	trialValueCents  = 100   // below one currency unit is effectively a trial
	mediumValueCents = 2000  // >= 20.00 -> medium
	highValueCents   = 10000 // >= 100.00 -> high
)

// SegmentService buckets a user into a value segment. Pure function of
// stored data: a missing subscription is a valid input, not a failure.
type SegmentService struct{}

func NewSegmentService() *SegmentService {
	return &SegmentService{}
}

// Segment classifies by monthly subscription value.
func (s *SegmentService) Segment(user *model.User, sub *model.Subscription) model.Segment {
	if sub == nil || sub.Value() < trialValueCents {
		return model.SegmentTrial
	}

	value := sub.Value()
	switch {
	case value >= highValueCents:
		return model.SegmentHighValue
	case value >= mediumValueCents:
		return model.SegmentMediumValue
	default:
		return model.SegmentLowValue
	}
}
