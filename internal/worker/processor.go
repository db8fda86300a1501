package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/model"
	"github.com/paxiitdevteam/retentionos/internal/pkg/pubsub"
	"github.com/paxiitdevteam/retentionos/internal/pkg/queue"
	"github.com/paxiitdevteam/retentionos/internal/service"
)

// Processor consumes feedback jobs: every recorded decision is folded into
// the performance aggregates, the flow's ranking score is recomputed, and a
// live event goes out for dashboards.
type Processor struct {
	performance *service.PerformanceService
	flows       *service.FlowService
	publisher   *pubsub.Publisher
	cfg         *config.Config
}

func NewProcessor(
	performance *service.PerformanceService,
	flows *service.FlowService,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *Processor {
	return &Processor{
		performance: performance,
		flows:       flows,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Process handles one feedback message. Aggregate and ranking failures are
// returned so the worker loop can log them; the publish step is best-effort.
func (p *Processor) Process(ctx context.Context, msg *queue.FeedbackMessage) error {
	event := &model.OfferEvent{
		ID:                msg.EventID,
		UserID:            msg.UserID,
		FlowID:            msg.FlowID,
		OfferType:         msg.OfferType,
		Accepted:          msg.Accepted,
		RevenueSavedCents: msg.RevenueSavedCents,
	}

	if err := p.performance.RecordOutcome(event, model.Segment(msg.Segment), msg.StepMessage); err != nil {
		return fmt.Errorf("failed to record outcome for event %d: %w", msg.EventID, err)
	}

	flow, err := p.flows.RecomputeRanking(msg.FlowID)
	if err != nil {
		return fmt.Errorf("failed to recompute ranking for flow %d: %w", msg.FlowID, err)
	}

	if p.publisher != nil {
		decision := &pubsub.DecisionMessage{
			Type:         pubsub.EventOfferDecided,
			UserID:       msg.UserID,
			FlowID:       msg.FlowID,
			OfferType:    msg.OfferType,
			Segment:      msg.Segment,
			Accepted:     msg.Accepted,
			RevenueSaved: model.Amount(msg.RevenueSavedCents),
			RankingScore: flow.RankingScore,
		}
		if err := p.publisher.PublishDecision(ctx, decision); err != nil {
			log.Printf("Failed to publish decision for event %d: %v", msg.EventID, err)
		}
	}

	log.Printf("Processed feedback for event %d: flow %d score is now %d",
		msg.EventID, msg.FlowID, flow.RankingScore)

	return nil
}
