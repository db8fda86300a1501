package dto

// OfferPerformanceView exposes one aggregate row with cents converted to
// currency amounts.
type OfferPerformanceView struct {
	OfferType         string  `json:"offer_type"`
	Segment           string  `json:"segment"` // "all" when aggregated
	ShownCount        int64   `json:"shown_count"`
	AcceptedCount     int64   `json:"accepted_count"`
	AcceptanceRate    float64 `json:"acceptance_rate"`
	AvgRevenueSaved   float64 `json:"avg_revenue_saved"`
	TotalRevenueSaved float64 `json:"total_revenue_saved"`
}

type MessagePerformanceView struct {
	OfferType      string  `json:"offer_type"`
	Message        string  `json:"message"`
	ShownCount     int64   `json:"shown_count"`
	AcceptedCount  int64   `json:"accepted_count"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}
