package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/service"
	"github.com/paxiitdevteam/retentionos/internal/testutil"
)

func TestRunNow_RecomputesFlowsWithEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	flowService := service.NewFlowService(flowRepo, eventRepo, testutil.TestConfig())
	svc := NewService(flowService, flowRepo)

	user := testutil.TestUser(t, db)
	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))

	// 2 accepted out of 4, 30.00 saved in total.
	testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferPause.String(), true, 1000)
	testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferDiscount.String(), true, 2000)
	testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferDowngrade.String(), false, 0)
	testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferPause.String(), false, 0)

	err := svc.RunNow()
	require.NoError(t, err)

	updated, err := flowRepo.GetByID(flow.ID)
	require.NoError(t, err)
	// 50%*0.6 + min(30/10,100)*0.4 = 30 + 1.2 -> 31
	assert.Equal(t, 31, updated.RankingScore)
}

func TestRunNow_SkipsFlowsWithoutEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	flowService := service.NewFlowService(flowRepo, eventRepo, testutil.TestConfig())
	svc := NewService(flowService, flowRepo)

	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))

	err := svc.RunNow()
	require.NoError(t, err)

	updated, err := flowRepo.GetByID(flow.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RankingScore)
}

func TestRunNow_IgnoresSyntheticEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	flowService := service.NewFlowService(flowRepo, eventRepo, testutil.TestConfig())
	svc := NewService(flowService, flowRepo)

	user := testutil.TestUser(t, db)
	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))

	// Cancel-attempt markers alone must not trigger a recompute.
	testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.EventCancelAttempt, false, 0)

	err := svc.RunNow()
	require.NoError(t, err)

	updated, err := flowRepo.GetByID(flow.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RankingScore)
}

func TestStartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	flowService := service.NewFlowService(flowRepo, eventRepo, testutil.TestConfig())
	svc := NewService(flowService, flowRepo)

	svc.Start()
	svc.Stop()
}
