package model

// OfferType is the closed set of retention offer kinds. Adding a type means
// touching every switch below, which is the point: no free-text dispatch.
type OfferType string

const (
	OfferPause     OfferType = "pause"
	OfferDowngrade OfferType = "downgrade"
	OfferDiscount  OfferType = "discount"
	OfferSupport   OfferType = "support"
	OfferFeedback  OfferType = "feedback"
)

// EventCancelAttempt marks the synthetic offer event logged once per
// cancellation interception. It is not a valid step type.
const EventCancelAttempt = "cancel_attempt"

// AllOfferTypes lists every valid step type.
var AllOfferTypes = []OfferType{
	OfferPause,
	OfferDowngrade,
	OfferDiscount,
	OfferSupport,
	OfferFeedback,
}

// Valid reports whether t is a member of the closed set.
func (t OfferType) Valid() bool {
	switch t {
	case OfferPause, OfferDowngrade, OfferDiscount, OfferSupport, OfferFeedback:
		return true
	}
	return false
}

func (t OfferType) String() string {
	return string(t)
}
