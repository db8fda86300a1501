package dto

// RankOffersRequest asks for a deterministic ordering of candidate offer
// types for a user context.
type RankOffersRequest struct {
	CandidateTypes []string `json:"candidate_types" binding:"required"`
	MonthlyValue   float64  `json:"monthly_value"`
	Plan           string   `json:"plan"`
	CancelAttempts int      `json:"cancel_attempts"`
}

// RankedOffer is one entry of the ordering; lower priority is shown first.
type RankedOffer struct {
	Type     string `json:"type"`
	Priority int    `json:"priority"`
	Reason   string `json:"reason"`
}

// RecommendationResponse names the best offer type for a segment, with the
// evidence behind the pick.
type RecommendationResponse struct {
	OfferType      string  `json:"offer_type"`
	Source         string  `json:"source"` // performance or rules
	AcceptanceRate float64 `json:"acceptance_rate,omitempty"`
	SampleSize     int64   `json:"sample_size,omitempty"`
}
