package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/pkg/pubsub"
	"github.com/paxiitdevteam/retentionos/internal/pkg/queue"
	"github.com/paxiitdevteam/retentionos/internal/repository"
	"github.com/paxiitdevteam/retentionos/internal/service"
	"github.com/paxiitdevteam/retentionos/internal/testutil"
)

func setupProcessor(t *testing.T, publisher *pubsub.Publisher) (*Processor, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := testutil.TestConfig()
	flowRepo := repository.NewFlowRepository(db)
	eventRepo := repository.NewOfferEventRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)

	flows := service.NewFlowService(flowRepo, eventRepo, cfg)
	performance := service.NewPerformanceService(perfRepo, cfg)

	return NewProcessor(performance, flows, publisher, cfg), db
}

func TestProcess_UpdatesAggregatesAndRanking(t *testing.T) {
	processor, db := setupProcessor(t, nil)

	user := testutil.TestUser(t, db)
	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))
	event := testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferDiscount.String(), true, 1000)

	err := processor.Process(context.Background(), &queue.FeedbackMessage{
		EventID:           event.ID,
		UserID:            user.ID,
		FlowID:            flow.ID,
		OfferType:         model.OfferDiscount.String(),
		Segment:           model.SegmentMediumValue.String(),
		Accepted:          true,
		RevenueSavedCents: 1000,
		StepMessage:       "Stay with us for 20% off.",
	})
	require.NoError(t, err)

	// Rollup and per-segment rows both exist.
	perfRepo := repository.NewPerformanceRepository(db)
	rollup, err := perfRepo.GetOffer(model.OfferDiscount.String(), model.SegmentAll)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rollup.ShownCount)
	assert.Equal(t, int64(1), rollup.AcceptedCount)
	assert.Equal(t, int64(1000), rollup.TotalSavedCents)

	segRow, err := perfRepo.GetOffer(model.OfferDiscount.String(), model.SegmentMediumValue.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), segRow.ShownCount)

	// 100%*0.6 + min(10/10,100)*0.4 = 60 + 0.4 -> 60
	flowRepo := repository.NewFlowRepository(db)
	updated, err := flowRepo.GetByID(flow.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.RankingScore)
}

func TestProcess_PublishesDecision(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	publisher := pubsub.NewPublisher(client)
	processor, db := setupProcessor(t, publisher)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, pubsub.ChannelRetentionEvents)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	user := testutil.TestUser(t, db)
	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))
	event := testutil.TestOfferEvent(t, db, user.ID, flow.ID, model.OfferPause.String(), true, 4900)

	err = processor.Process(ctx, &queue.FeedbackMessage{
		EventID:           event.ID,
		UserID:            user.ID,
		FlowID:            flow.ID,
		OfferType:         model.OfferPause.String(),
		Segment:           model.SegmentMediumValue.String(),
		Accepted:          true,
		RevenueSavedCents: 4900,
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var decision pubsub.DecisionMessage
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decision))
		assert.Equal(t, pubsub.EventOfferDecided, decision.Type)
		assert.Equal(t, flow.ID, decision.FlowID)
		assert.Equal(t, model.OfferPause.String(), decision.OfferType)
		assert.True(t, decision.Accepted)
		assert.InDelta(t, 49.00, decision.RevenueSaved, 0.001)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published decision")
	}
}

func TestProcess_SyntheticEventSkipsAggregates(t *testing.T) {
	processor, db := setupProcessor(t, nil)

	user := testutil.TestUser(t, db)
	flow := testutil.TestFlow(t, db, testutil.WithRankingScore(1))

	err := processor.Process(context.Background(), &queue.FeedbackMessage{
		EventID:   1,
		UserID:    user.ID,
		FlowID:    flow.ID,
		OfferType: model.EventCancelAttempt,
		Segment:   model.SegmentTrial.String(),
	})
	require.NoError(t, err)

	perfRepo := repository.NewPerformanceRepository(db)
	rows, err := perfRepo.ListOffers()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestProcess_UnknownFlowFails(t *testing.T) {
	processor, _ := setupProcessor(t, nil)

	err := processor.Process(context.Background(), &queue.FeedbackMessage{
		EventID:   1,
		UserID:    1,
		FlowID:    9999,
		OfferType: model.OfferPause.String(),
	})
	assert.Error(t, err)
}
