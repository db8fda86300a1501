package service

import (
	"sort"

	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
)

// OfferContext is the user state the ranking rules look at.
type OfferContext struct {
	MonthlyValueCents int64
	Plan              string
	CancelAttempts    int
}

// Support offer placement: leads everything after repeated cancel attempts,
// otherwise trails as a last resort.
const (
	supportLeadPriority  = 0
	supportTrailPriority = 99
)

// OfferRankingService orders candidate offer types with deterministic,
// rule-priority logic. No persistence, no side effects.
type OfferRankingService struct{}

func NewOfferRankingService() *OfferRankingService {
	return &OfferRankingService{}
}

// Rank emits the candidates present in the value-tier base ordering, applies
// the support override, and returns the list sorted by ascending priority.
// The sort is stable so identical inputs always produce identical output.
func (s *OfferRankingService) Rank(candidates []model.OfferType, octx OfferContext) []dto.RankedOffer {
	present := make(map[model.OfferType]bool, len(candidates))
	for _, c := range candidates {
		present[c] = true
	}

	base, tierReason := tierOrdering(octx.MonthlyValueCents)

	ranked := make([]dto.RankedOffer, 0, len(candidates)+1)
	for i, offerType := range base {
		if !present[offerType] {
			continue // absent candidates are skipped, no gap-filling
		}
		ranked = append(ranked, dto.RankedOffer{
			Type:     offerType.String(),
			Priority: i + 1,
			Reason:   tierReason,
		})
	}

	if present[model.OfferSupport] {
		if octx.CancelAttempts > 1 {
			ranked = append(ranked, dto.RankedOffer{
				Type:     model.OfferSupport.String(),
				Priority: supportLeadPriority,
				Reason:   "repeated cancel attempts, lead with support",
			})
		} else {
			ranked = append(ranked, dto.RankedOffer{
				Type:     model.OfferSupport.String(),
				Priority: supportTrailPriority,
				Reason:   "support as last resort",
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority < ranked[j].Priority
	})

	return ranked
}

// tierOrdering returns the base offer order for a monthly value tier. The
// first matching tier wins.
func tierOrdering(valueCents int64) ([]model.OfferType, string) {
	switch {
	case valueCents >= highValueCents:
		return []model.OfferType{model.OfferDiscount, model.OfferPause, model.OfferDowngrade},
			"high value: discount first"
	case valueCents >= mediumValueCents:
		return []model.OfferType{model.OfferPause, model.OfferDiscount, model.OfferDowngrade},
			"medium value: pause first"
	default:
		return []model.OfferType{model.OfferDowngrade, model.OfferPause, model.OfferDiscount},
			"low value: downgrade first"
	}
}
