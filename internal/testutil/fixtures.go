package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
)

// TestUser creates a user row for tests.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		ExternalID: fmt.Sprintf("ext_%d", time.Now().UnixNano()),
		Plan:       "pro",
		Region:     "us",
		Language:   "en",
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithExternalID sets the host SaaS identifier.
func WithExternalID(externalID string) func(*model.User) {
	return func(u *model.User) {
		u.ExternalID = externalID
	}
}

// WithLanguage sets the user language.
func WithLanguage(language string) func(*model.User) {
	return func(u *model.User) {
		u.Language = language
	}
}

// WithPlan sets the plan name.
func WithPlan(plan string) func(*model.User) {
	return func(u *model.User) {
		u.Plan = plan
	}
}

// TestSubscription creates a subscription for a user.
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	value := int64(4900) // 49.00 by default
	sub := &model.Subscription{
		UserID:     userID,
		ValueCents: &value,
		Status:     model.SubscriptionActive,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithValueCents sets the monthly value.
func WithValueCents(cents int64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.ValueCents = &cents
	}
}

// WithNoValue clears the monthly value.
func WithNoValue() func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.ValueCents = nil
	}
}

// WithCancelAttempts sets the interception counter.
func WithCancelAttempts(n int) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.CancelAttempts = n
	}
}

// WithStatus sets the lifecycle status.
func WithStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// TestFlow creates a flow with a standard three-step layout unless steps are
// overridden.
func TestFlow(t *testing.T, db *gorm.DB, opts ...func(*model.Flow)) *model.Flow {
	t.Helper()

	flow := &model.Flow{
		Name:         fmt.Sprintf("Test Flow %d", time.Now().UnixNano()%100000),
		Language:     "en",
		RankingScore: 1,
		Steps: []model.FlowStep{
			{Position: 1, OfferType: model.OfferPause, Title: "Take a break", Message: "Pause your subscription instead of cancelling."},
			{Position: 2, OfferType: model.OfferDiscount, Title: "20% off", Message: "Stay with us for 20% off your next 3 months.", Config: model.JSONMap{"percentage": 20.0}},
			{Position: 3, OfferType: model.OfferDowngrade, Title: "Switch plans", Message: "Move to a smaller plan that fits your usage.", Config: model.JSONMap{"target_plan": "starter"}},
		},
	}

	for _, opt := range opts {
		opt(flow)
	}

	if err := db.Create(flow).Error; err != nil {
		t.Fatalf("Failed to create test flow: %v", err)
	}

	return flow
}

// WithRankingScore sets the flow's ranking score.
func WithRankingScore(score int) func(*model.Flow) {
	return func(f *model.Flow) {
		f.RankingScore = score
	}
}

// WithFlowLanguage sets the flow language tag.
func WithFlowLanguage(language string) func(*model.Flow) {
	return func(f *model.Flow) {
		f.Language = language
	}
}

// WithFlowName sets the flow name.
func WithFlowName(name string) func(*model.Flow) {
	return func(f *model.Flow) {
		f.Name = name
	}
}

// WithSteps replaces the default step layout.
func WithSteps(steps ...model.FlowStep) func(*model.Flow) {
	return func(f *model.Flow) {
		f.Steps = steps
	}
}

// WithCreatedAt pins the creation timestamp (selection tie-breaking tests).
func WithCreatedAt(at time.Time) func(*model.Flow) {
	return func(f *model.Flow) {
		f.CreatedAt = at
	}
}

// TestOfferEvent appends an offer event.
func TestOfferEvent(t *testing.T, db *gorm.DB, userID, flowID int64, offerType string, accepted bool, savedCents int64) *model.OfferEvent {
	t.Helper()

	event := &model.OfferEvent{
		UserID:            userID,
		FlowID:            flowID,
		OfferType:         offerType,
		Accepted:          accepted,
		RevenueSavedCents: savedCents,
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test offer event: %v", err)
	}

	return event
}

// SeedWeights writes the four churn factor coefficients.
func SeedWeights(t *testing.T, db *gorm.DB, behavior, value, history, cancelAttempts float64) {
	t.Helper()

	rows := []model.AIWeight{
		{Name: model.WeightBehavior, Value: behavior},
		{Name: model.WeightValue, Value: value},
		{Name: model.WeightHistory, Value: history},
		{Name: model.WeightCancelAttempts, Value: cancelAttempts},
	}
	for _, row := range rows {
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("Failed to seed weight %s: %v", row.Name, err)
		}
	}
}
