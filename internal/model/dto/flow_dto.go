package dto

// FlowStepRequest is one step of a flow create/update payload.
type FlowStepRequest struct {
	OfferType string                 `json:"offer_type" binding:"required"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Config    map[string]interface{} `json:"config"`
}

type CreateFlowRequest struct {
	Name     string            `json:"name" binding:"required"`
	Language string            `json:"language"`
	Steps    []FlowStepRequest `json:"steps" binding:"required"`
}

type UpdateFlowRequest struct {
	Name     *string           `json:"name"`
	Language *string           `json:"language"`
	Steps    []FlowStepRequest `json:"steps"`
}

// ValidationResult reports structural problems with a flow. Errors block
// activation; warnings do not.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
