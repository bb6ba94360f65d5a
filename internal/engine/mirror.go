package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casino-lobby/internal/logger"
	"casino-lobby/internal/models"
)

const (
	storeTimeout = 2 * time.Second
	waitPoll     = 5 * time.Millisecond
)

type mirrorJob struct {
	playerID string
	snapshot *models.PlayerSnapshot
	records  []models.WagerRecord
}

// mirror writes player changes to the Store from a single goroutine.
// Callers enqueue while holding the player lock, so a player's snapshots land
// in the order they were taken. Settlement never waits on it.
type mirror struct {
	store Store
	jobs  chan mirrorJob

	mu     sync.Mutex
	queued map[string]int // jobs not yet written, by player
}

func newMirror(store Store, size int) *mirror {
	m := &mirror{store: store, queued: make(map[string]int)}
	if store != nil {
		m.jobs = make(chan mirrorJob, size)
	}
	return m
}

func (m *mirror) enqueue(job mirrorJob) {
	if m.store == nil {
		return
	}
	m.mu.Lock()
	m.queued[job.playerID]++
	m.mu.Unlock()

	select {
	case m.jobs <- job:
	default:
		m.done(job.playerID)
		logger.Log.Warnw("Persistence queue full, dropping update", "player_id", job.playerID)
	}
}

func (m *mirror) done(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queued[playerID]--; m.queued[playerID] <= 0 {
		delete(m.queued, playerID)
	}
}

// pending reports how many of the player's jobs are still queued.
func (m *mirror) pending(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queued[playerID]
}

// wait blocks until every queued job for the player has been written.
func (m *mirror) wait(ctx context.Context, playerID string) error {
	if m.pending(playerID) == 0 {
		return nil
	}
	ticker := time.NewTicker(waitPoll)
	defer ticker.Stop()
	for m.pending(playerID) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (m *mirror) run(ctx context.Context) {
	if m.store == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			m.drain()
			return
		case job := <-m.jobs:
			m.write(job)
		}
	}
}

// drain flushes what is already queued after shutdown was requested.
func (m *mirror) drain() {
	for {
		select {
		case job := <-m.jobs:
			m.write(job)
		default:
			return
		}
	}
}

func (m *mirror) write(job mirrorJob) {
	defer m.done(job.playerID)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	for _, rec := range job.records {
		if err := m.store.AppendWager(ctx, job.playerID, rec); err != nil {
			logger.Log.Errorw("Failed to persist wager", "player_id", job.playerID, "wager_id", rec.ID, "error", err)
		}
	}
	if job.snapshot != nil {
		if err := m.store.SavePlayer(ctx, job.snapshot); err != nil {
			logger.Log.Errorw("Failed to persist player", "player_id", job.playerID, "error", err)
		}
	}
}

func (m *mirror) load(ctx context.Context, playerID string) (*models.PlayerSnapshot, error) {
	if m.store == nil {
		return nil, models.ErrPlayerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := m.wait(ctx, playerID); err != nil {
		return nil, fmt.Errorf("waiting for pending writes: %w", err)
	}
	return m.store.LoadPlayer(ctx, playerID)
}
