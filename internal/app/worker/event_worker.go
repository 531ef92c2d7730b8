package worker

import (
	"contest_hub/internal/domain/model"
	"contest_hub/internal/domain/repository"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "contest_hub:event_seen:"

// EventWorker drains the contest event queue. Each event is handled at most once per
// dedup window, however many times it was pushed.
type EventWorker struct {
	rdb       *redis.Client
	cache     repository.LeaderboardCache
	queueName string
	dedupTTL  time.Duration
}

func NewEventWorker(rdb *redis.Client, cache repository.LeaderboardCache, queueName string, dedupTTL time.Duration) *EventWorker {
	return &EventWorker{
		rdb:       rdb,
		cache:     cache,
		queueName: queueName,
		dedupTTL:  dedupTTL,
	}
}

func (w *EventWorker) Start(ctx context.Context) {
	log.Println("Event worker started, listening to queue:", w.queueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Event worker stopping...")
			return
		default:
			// Blocking pop; the timeout lets the loop notice cancellation.
			res, err := w.rdb.BRPop(ctx, 5*time.Second, w.queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", w.queueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// res is [queueName, value]
			if len(res) < 2 || res[1] == "" {
				log.Println("WARN: BRPop returned empty event.")
				continue
			}
			w.process(ctx, res[1])
		}
	}
}

func (w *EventWorker) process(ctx context.Context, raw string) {
	var ev model.ContestEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		log.Printf("ERROR: Dropping malformed event %q: %v", raw, err)
		return
	}
	if ev.ID != "" {
		first, err := w.rdb.SetNX(ctx, dedupKeyPrefix+ev.ID, 1, w.dedupTTL).Result()
		if err != nil {
			log.Printf("WARN: Dedup check failed for event %s, handling anyway: %v", ev.ID, err)
		} else if !first {
			log.Printf("INFO: Event %s already handled, skipping", ev.ID)
			return
		}
	}
	if err := w.handleEvent(ctx, ev); err != nil {
		log.Printf("ERROR: Failed to handle event %s (%s): %v", ev.ID, ev.Type, err)
	}
}

func (w *EventWorker) handleEvent(ctx context.Context, ev model.ContestEvent) error {
	switch ev.Type {
	case model.EventWinnerDeclared:
		if err := w.cache.Invalidate(ctx); err != nil {
			return err
		}
		log.Printf("INFO: Contest %s won by %s, leaderboard cache cleared", ev.ContestID, ev.Email)
	case model.EventContestDeleted:
		if err := w.cache.Invalidate(ctx); err != nil {
			return err
		}
		log.Printf("INFO: Decided contest %s deleted, leaderboard cache cleared", ev.ContestID)
	case model.EventPaymentConfirmed:
		log.Printf("INFO: %s registered for contest %s", ev.Email, ev.ContestID)
	default:
		log.Printf("WARN: Unknown event type '%s' for event %s", ev.Type, ev.ID)
	}
	return nil
}
