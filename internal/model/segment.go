package model

// Segment is the coarse value/risk bucket used to tailor offer ranking.
type Segment string

const (
	SegmentTrial       Segment = "trial"
	SegmentLowValue    Segment = "low_value"
	SegmentMediumValue Segment = "medium_value"
	SegmentHighValue   Segment = "high_value"
)

// SegmentAll is the OfferPerformance key meaning "aggregated over all
// segments". Stored as the empty string so the composite unique index holds
// (MySQL treats NULLs as distinct in unique indexes).
const SegmentAll = ""

func (s Segment) String() string {
	return string(s)
}
