package queue

import (
	"contest_hub/internal/domain/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventPublisher hands contest events to the background worker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, contestID, email string) error
}

type redisEventPublisher struct {
	rdb       *redis.Client
	queueName string
}

func NewRedisEventPublisher(rdb *redis.Client, queueName string) EventPublisher {
	return &redisEventPublisher{rdb: rdb, queueName: queueName}
}

func NewEvent(eventType, contestID, email string) model.ContestEvent {
	return model.ContestEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ContestID:  contestID,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

func (p *redisEventPublisher) Publish(ctx context.Context, eventType, contestID, email string) error {
	payload, err := json.Marshal(NewEvent(eventType, contestID, email))
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if err := p.rdb.LPush(ctx, p.queueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to push %s event to Redis queue: %w", eventType, err)
	}
	return nil
}
