package dto

// ChurnFactors are the four sub-scores, each 0-100, before weighting.
type ChurnFactors struct {
	Behavior       int `json:"behavior"`
	Value          int `json:"value"`
	History        int `json:"history"`
	CancelAttempts int `json:"cancel_attempts"`
}

type ChurnScoreResponse struct {
	Score       int          `json:"score"` // 0-100
	Factors     ChurnFactors `json:"factors"`
	Explanation string       `json:"explanation"`
}
