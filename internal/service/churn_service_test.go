package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/testutil"
)

func setupChurnService(t *testing.T) (*ChurnService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewChurnService(
		repository.NewUserRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewOfferEventRepository(db),
		repository.NewAIWeightRepository(db),
		testutil.TestConfig(),
	), db
}

func TestScore_UnknownUser(t *testing.T) {
	svc, _ := setupChurnService(t)

	_, err := svc.Score("no-such-user")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestScore_NewUserDefaults(t *testing.T) {
	svc, db := setupChurnService(t)

	user := testutil.TestUser(t, db, testutil.WithExternalID("fresh"))

	resp, err := svc.Score("fresh")
	require.NoError(t, err)

	// No subscription, no events: behavior 0, value 70, history 30, attempts 0.
	assert.Equal(t, 0, resp.Factors.Behavior)
	assert.Equal(t, 70, resp.Factors.Value)
	assert.Equal(t, 30, resp.Factors.History)
	assert.Equal(t, 0, resp.Factors.CancelAttempts)
	assert.Contains(t, resp.Explanation, "new user with no history")

	// 0*0.3 + 70*0.25 + 30*0.25 + 0*0.2 = 25
	assert.Equal(t, 25, resp.Score)

	// Write-back is async.
	userRepo := repository.NewUserRepository(db)
	assert.Eventually(t, func() bool {
		stored, err := userRepo.GetByID(user.ID)
		return err == nil && stored.ChurnScore == 25
	}, 2*time.Second, 20*time.Millisecond)
}

func TestScore_RepeatedAttemptsRaiseScore(t *testing.T) {
	svc, db := setupChurnService(t)

	userLow := testutil.TestUser(t, db, testutil.WithExternalID("calm"))
	testutil.TestSubscription(t, db, userLow.ID, testutil.WithValueCents(4900))

	userHigh := testutil.TestUser(t, db, testutil.WithExternalID("agitated"))
	testutil.TestSubscription(t, db, userHigh.ID, testutil.WithValueCents(4900), testutil.WithCancelAttempts(3))

	calm, err := svc.Score("calm")
	require.NoError(t, err)
	agitated, err := svc.Score("agitated")
	require.NoError(t, err)

	assert.Greater(t, agitated.Score, calm.Score)
	assert.Equal(t, 60, agitated.Factors.Behavior)
	assert.Equal(t, 75, agitated.Factors.CancelAttempts)
}

func TestScore_FactorsCapAt100(t *testing.T) {
	svc, db := setupChurnService(t)

	user := testutil.TestUser(t, db, testutil.WithExternalID("serial"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithCancelAttempts(50))

	resp, err := svc.Score("serial")
	require.NoError(t, err)

	assert.Equal(t, 100, resp.Factors.Behavior)
	assert.Equal(t, 100, resp.Factors.CancelAttempts)
}

func TestScore_HistoryLowersRisk(t *testing.T) {
	svc, db := setupChurnService(t)

	user := testutil.TestUser(t, db, testutil.WithExternalID("loyal"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithValueCents(4900))
	flow := testutil.TestFlow(t, db)

	// 8 of 10 recent offers accepted -> history factor 20.
	for i := 0; i < 8; i++ {
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferPause.String(), true, 1000)
	}
	for i := 0; i < 2; i++ {
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferDiscount.String(), false, 0)
	}

	resp, err := svc.Score("loyal")
	require.NoError(t, err)

	assert.Equal(t, 20, resp.Factors.History)
	assert.Contains(t, resp.Explanation, "accepted 8 of 10 recent offers")
}

func TestScore_SyntheticEventsIgnoredInHistory(t *testing.T) {
	svc, db := setupChurnService(t)

	user := testutil.TestUser(t, db, testutil.WithExternalID("looper"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithValueCents(4900))
	flow := testutil.TestFlow(t, db)

	for i := 0; i < 5; i++ {
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.EventCancelAttempt, false, 0)
	}

	resp, err := svc.Score("looper")
	require.NoError(t, err)

	// Only markers, no real offer history: new-user default applies.
	assert.Equal(t, 30, resp.Factors.History)
	assert.Contains(t, resp.Explanation, "new user with no history")
}

func TestScore_ClampWithAdversarialWeights(t *testing.T) {
	svc, db := setupChurnService(t)

	// Stored weights are used as-is even when absurd; the clamp holds 0-100.
	testutil.SeedWeights(t, db, 10.0, 10.0, 10.0, 10.0)

	user := testutil.TestUser(t, db, testutil.WithExternalID("extreme"))
	testutil.TestSubscription(t, db, user.ID, testutil.WithValueCents(100), testutil.WithCancelAttempts(10))

	resp, err := svc.Score("extreme")
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Score)

	weightRepo := repository.NewAIWeightRepository(db)
	for _, name := range []string{model.WeightBehavior, model.WeightValue, model.WeightHistory, model.WeightCancelAttempts} {
		require.NoError(t, weightRepo.Upsert(name, -5.0))
	}

	resp, err = svc.Score("extreme")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
}

func TestScore_ValueTiers(t *testing.T) {
	svc, db := setupChurnService(t)

	tests := []struct {
		externalID string
		cents      int64
		want       int
	}{
		{"cheap", 1500, 70},
		{"mid", 3000, 50},
		{"premium", 9000, 30},
	}

	for _, tt := range tests {
		user := testutil.TestUser(t, db, testutil.WithExternalID(tt.externalID))
		testutil.TestSubscription(t, db, user.ID, testutil.WithValueCents(tt.cents))
	}

	for _, tt := range tests {
		t.Run(tt.externalID, func(t *testing.T) {
			resp, err := svc.Score(tt.externalID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Factors.Value)
		})
	}
}
