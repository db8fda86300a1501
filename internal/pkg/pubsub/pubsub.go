package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelRetentionEvents = "retention_events"
)

// Event types published on the retention channel.
const (
	EventFlowStarted  = "flow_started"
	EventOfferDecided = "offer_decided"
	EventScoreUpdated = "flow_score_updated"
)

// DecisionMessage is the live-feed payload consumed by dashboards.
type DecisionMessage struct {
	Type         string  `json:"type"`
	UserID       int64   `json:"user_id"`
	FlowID       int64   `json:"flow_id"`
	OfferType    string  `json:"offer_type,omitempty"`
	Segment      string  `json:"segment,omitempty"`
	Accepted     bool    `json:"accepted"`
	RevenueSaved float64 `json:"revenue_saved,omitempty"`
	RankingScore int     `json:"ranking_score,omitempty"`
}

// Publisher publishes retention events to redis.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishDecision pushes one event onto the retention channel.
func (p *Publisher) PublishDecision(ctx context.Context, msg *DecisionMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal decision message: %w", err)
	}

	return p.client.Publish(ctx, ChannelRetentionEvents, data).Err()
}

// Subscriber consumes retention events.
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe blocks, invoking handler for every event until ctx is done.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*DecisionMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelRetentionEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var decision DecisionMessage
			if err := json.Unmarshal([]byte(msg.Payload), &decision); err != nil {
				continue // skip malformed payloads
			}

			handler(&decision)
		}
	}
}
