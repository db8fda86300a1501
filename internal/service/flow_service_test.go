package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/testutil"
)

func setupFlowService(t *testing.T) (*FlowService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	return NewFlowService(
		repository.NewFlowRepository(db),
		repository.NewOfferEventRepository(db),
		testutil.TestConfig(),
	), db
}

func validCreateRequest() *dto.CreateFlowRequest {
	return &dto.CreateFlowRequest{
		Name: "Winback",
		Steps: []dto.FlowStepRequest{
			{OfferType: "pause", Title: "Take a break", Message: "Pause instead of cancelling."},
			{OfferType: "discount", Title: "20% off", Message: "Stay for less.", Config: map[string]interface{}{"percentage": 20.0}},
		},
	}
}

func TestCreateFlow(t *testing.T) {
	svc, _ := setupFlowService(t)

	flow, err := svc.Create(validCreateRequest())
	require.NoError(t, err)

	assert.NotZero(t, flow.ID)
	assert.Equal(t, "en", flow.Language) // default applied
	assert.Equal(t, 0, flow.RankingScore)
	require.Len(t, flow.Steps, 2)
	assert.Equal(t, 1, flow.Steps[0].Position)
	assert.Equal(t, 2, flow.Steps[1].Position)
}

func TestCreateFlow_NoSteps(t *testing.T) {
	svc, _ := setupFlowService(t)

	_, err := svc.Create(&dto.CreateFlowRequest{Name: "Empty"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateFlow_UnknownOfferType(t *testing.T) {
	svc, _ := setupFlowService(t)

	req := validCreateRequest()
	req.Steps[0].OfferType = "bribe"

	_, err := svc.Create(req)
	assert.ErrorIs(t, err, ErrInvalidOfferType)
}

func TestCreateFlow_BadDiscountPercentage(t *testing.T) {
	svc, _ := setupFlowService(t)

	req := validCreateRequest()
	req.Steps[1].Config = map[string]interface{}{"percentage": 150.0}

	_, err := svc.Create(req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateFlow_ReplacesSteps(t *testing.T) {
	svc, db := setupFlowService(t)

	flow := testutil.TestFlow(t, db)

	name := "Renamed"
	updated, err := svc.Update(flow.ID, &dto.UpdateFlowRequest{
		Name: &name,
		Steps: []dto.FlowStepRequest{
			{OfferType: "support", Title: "Talk to us", Message: "We can help."},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	require.Len(t, updated.Steps, 1)
	assert.Equal(t, model.OfferSupport, updated.Steps[0].OfferType)
}

func TestValidate(t *testing.T) {
	svc, _ := setupFlowService(t)

	t.Run("valid flow", func(t *testing.T) {
		result := svc.Validate(&model.Flow{
			Name: "OK",
			Steps: []model.FlowStep{
				{OfferType: model.OfferPause, Title: "t", Message: "m"},
			},
		})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("missing name and steps", func(t *testing.T) {
		result := svc.Validate(&model.Flow{})
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "flow name is required")
		assert.Contains(t, result.Errors, "flow must have at least one step")
	})

	t.Run("discount without percentage", func(t *testing.T) {
		result := svc.Validate(&model.Flow{
			Name: "Bad discount",
			Steps: []model.FlowStep{
				{OfferType: model.OfferDiscount, Title: "t", Message: "m"},
			},
		})
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "step 1: discount requires a numeric percentage")
	})

	t.Run("downgrade without target plan warns", func(t *testing.T) {
		result := svc.Validate(&model.Flow{
			Name: "Vague downgrade",
			Steps: []model.FlowStep{
				{OfferType: model.OfferDowngrade, Title: "t", Message: "m"},
			},
		})
		assert.True(t, result.Valid)
		assert.Contains(t, result.Warnings, "step 1: downgrade should specify a target plan")
	})

	t.Run("too many steps warns", func(t *testing.T) {
		steps := make([]model.FlowStep, 0, 11)
		for i := 0; i < 11; i++ {
			steps = append(steps, model.FlowStep{OfferType: model.OfferPause, Title: "t", Message: "m"})
		}
		result := svc.Validate(&model.Flow{Name: "Long", Steps: steps})
		assert.True(t, result.Valid)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestActivate(t *testing.T) {
	svc, db := setupFlowService(t)

	t.Run("valid flow gets minimum score", func(t *testing.T) {
		flow := testutil.TestFlow(t, db, testutil.WithRankingScore(0))

		activated, err := svc.Activate(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, activated.RankingScore)
	})

	t.Run("already scored flow keeps its score", func(t *testing.T) {
		flow := testutil.TestFlow(t, db, testutil.WithRankingScore(40))

		activated, err := svc.Activate(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, 40, activated.RankingScore)
	})

	t.Run("invalid flow refuses and keeps score", func(t *testing.T) {
		flow := testutil.TestFlow(t, db,
			testutil.WithRankingScore(0),
			testutil.WithSteps(model.FlowStep{Position: 1, OfferType: model.OfferDiscount, Title: "t", Message: "m"}))

		_, err := svc.Activate(flow.ID)
		assert.ErrorIs(t, err, ErrFlowValidation)

		stored, err := svc.Get(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.RankingScore)
	})

	t.Run("missing flow", func(t *testing.T) {
		_, err := svc.Activate(99999)
		assert.ErrorIs(t, err, ErrFlowNotFound)
	})
}

func TestDeactivate(t *testing.T) {
	svc, db := setupFlowService(t)

	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(55))

	deactivated, err := svc.Deactivate(flow.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, deactivated.RankingScore)
}

func TestSelectActive(t *testing.T) {
	svc, db := setupFlowService(t)

	t.Run("no eligible flow", func(t *testing.T) {
		_, err := svc.SelectActive("de")
		assert.ErrorIs(t, err, ErrNoActiveFlow)
	})

	t.Run("highest score wins", func(t *testing.T) {
		testutil.TestFlow(t, db, testutil.WithFlowName("low"), testutil.WithRankingScore(10))
		best := testutil.TestFlow(t, db, testutil.WithFlowName("high"), testutil.WithRankingScore(80))
		testutil.TestFlow(t, db, testutil.WithFlowName("inactive"), testutil.WithRankingScore(0))

		flow, err := svc.SelectActive("en")
		require.NoError(t, err)
		assert.Equal(t, best.ID, flow.ID)
	})

	t.Run("language filtered", func(t *testing.T) {
		german := testutil.TestFlow(t, db, testutil.WithFlowLanguage("de"), testutil.WithRankingScore(5))

		flow, err := svc.SelectActive("de")
		require.NoError(t, err)
		assert.Equal(t, german.ID, flow.ID)
	})
}

func TestRecomputeRanking(t *testing.T) {
	svc, db := setupFlowService(t)

	t.Run("no events leaves score untouched", func(t *testing.T) {
		flow := testutil.TestFlow(t, db, testutil.WithRankingScore(7))

		recomputed, err := svc.RecomputeRanking(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, recomputed.RankingScore)
	})

	t.Run("blends acceptance and revenue", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))

		// 1 of 2 accepted, 400.00 saved: 50*0.6 + min(40,100)*0.4 = 46
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferDiscount.String(), true, 40000)
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferPause.String(), false, 0)

		recomputed, err := svc.RecomputeRanking(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, 46, recomputed.RankingScore)
	})

	t.Run("revenue factor caps at 100", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))

		// All accepted, enormous savings: 100*0.6 + 100*0.4 = 100
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferDiscount.String(), true, 100000000)

		recomputed, err := svc.RecomputeRanking(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, recomputed.RankingScore)
	})

	t.Run("idempotent", func(t *testing.T) {
		user := testutil.TestUser(t, db)
		flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))
		testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferPause.String(), true, 2000)

		first, err := svc.RecomputeRanking(flow.ID)
		require.NoError(t, err)
		second, err := svc.RecomputeRanking(flow.ID)
		require.NoError(t, err)
		assert.Equal(t, first.RankingScore, second.RankingScore)
	})
}
