package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// FeedbackMessage carries one recorded decision from the API server to the
// feedback worker. Everything the worker needs is inlined so it never has to
// re-derive segment or message from the database.
type FeedbackMessage struct {
	EventID           int64  `json:"event_id"`
	UserID            int64  `json:"user_id"`
	FlowID            int64  `json:"flow_id"`
	OfferType         string `json:"offer_type"`
	Segment           string `json:"segment"`
	Accepted          bool   `json:"accepted"`
	RevenueSavedCents int64  `json:"revenue_saved_cents"`
	StepMessage       string `json:"step_message,omitempty"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push enqueues a feedback job.
func (q *Queue) Push(ctx context.Context, msg *FeedbackMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks up to timeout for the next job. Returns (nil, nil) on timeout.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*FeedbackMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg FeedbackMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length returns the number of pending jobs.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
