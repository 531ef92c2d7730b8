package testutil

import (
	"contest_hub/internal/domain/model"
	"contest_hub/internal/platform/queue"
	"context"
	"errors"
	"sync"
)

// Publisher records published events instead of queueing them.
type Publisher struct {
	mu     sync.Mutex
	Events []model.ContestEvent
	Fail   bool
}

func (p *Publisher) Publish(ctx context.Context, eventType, contestID, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return errors.New("publisher unavailable")
	}
	p.Events = append(p.Events, queue.NewEvent(eventType, contestID, email))
	return nil
}

func (p *Publisher) Count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.Events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// Cache is an in-memory leaderboard cache.
type Cache struct {
	mu          sync.Mutex
	entries     []model.LeaderboardEntry
	set         bool
	Sets        int
	Invalidates int
}

func (c *Cache) Get(ctx context.Context) ([]model.LeaderboardEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return nil, false, nil
	}
	return append([]model.LeaderboardEntry(nil), c.entries...), true, nil
}

func (c *Cache) Set(ctx context.Context, entries []model.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]model.LeaderboardEntry(nil), entries...)
	c.set = true
	c.Sets++
	return nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries, c.set = nil, false
	c.Invalidates++
	return nil
}
