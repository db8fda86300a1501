package dto

// StartFlowRequest is sent by the host SaaS when a user hits "cancel".
type StartFlowRequest struct {
	ExternalUserID string   `json:"external_user_id" binding:"required"`
	Email          string   `json:"email"`
	Plan           string   `json:"plan"`
	Region         string   `json:"region"`
	Language       string   `json:"language"`
	Value          *float64 `json:"value"` // monthly value, currency units
	BillingRef     string   `json:"billing_ref"`
}

// StepView is one ordered offer step as presented to the widget.
type StepView struct {
	OfferType string                 `json:"offer_type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Config    map[string]interface{} `json:"config,omitempty"`
	Priority  int                    `json:"priority"`
	Reason    string                 `json:"reason,omitempty"`
}

type StartFlowResponse struct {
	FlowID         int64      `json:"flow_id"`
	Language       string     `json:"language"`
	Segment        string     `json:"segment"`
	CancelAttempts int        `json:"cancel_attempts"`
	Steps          []StepView `json:"steps"`
}

// DecisionRequest records the user's reaction to one offer. Accepted is a
// pointer so an explicit false survives binding validation.
type DecisionRequest struct {
	FlowID         int64    `json:"flow_id" binding:"required"`
	OfferType      string   `json:"offer_type" binding:"required"`
	Accepted       *bool    `json:"accepted" binding:"required"`
	ExternalUserID string   `json:"external_user_id"`
	RevenueValue   *float64 `json:"revenue_value"` // currency units
	ReasonCode     string   `json:"reason_code"`
	ReasonText     string   `json:"reason_text"`
}

type DecisionResponse struct {
	Success             bool    `json:"success"`
	Message             string  `json:"message"`
	RevenueSaved        float64 `json:"revenue_saved"`
	SubscriptionUpdated bool    `json:"subscription_updated"`
}
