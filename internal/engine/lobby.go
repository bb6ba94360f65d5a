package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"casino-lobby/internal/logger"
	"casino-lobby/internal/models"
)

// Lobby is the registry of players currently hosted by an engine.
type Lobby struct {
	engine  *Engine
	mu      sync.RWMutex
	players map[string]*Player
}

func newLobby(e *Engine) *Lobby {
	return &Lobby{engine: e, players: make(map[string]*Player)}
}

// CreatePlayer registers a guest with the configured starting credits.
func (l *Lobby) CreatePlayer() *Player {
	e := l.engine
	p := newPlayer(models.GeneratePlayerID(), e.opts.StartingCredits, e.opts.Location, e.now())

	l.mu.Lock()
	l.players[p.id] = p
	l.mu.Unlock()

	e.stats.Credited("starting", e.opts.StartingCredits)

	p.mu.Lock()
	e.mirror.enqueue(mirrorJob{playerID: p.id, snapshot: p.snapshot()})
	p.mu.Unlock()

	logger.Log.Infow("Player created", "player_id", p.id, "credits", e.opts.StartingCredits)
	return p
}

// Player returns a hosted player, restoring it from the store when it is not
// in memory.
func (l *Lobby) Player(ctx context.Context, id string) (*Player, error) {
	l.mu.RLock()
	p, ok := l.players[id]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}

	snap, err := l.engine.mirror.load(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrPlayerNotFound, id)
		}
		return nil, fmt.Errorf("failed to load player %s: %w", id, err)
	}
	return l.Restore(snap), nil
}

// Restore hosts a player from a snapshot. An already hosted player wins over
// the snapshot.
func (l *Lobby) Restore(snap *models.PlayerSnapshot) *Player {
	p := restorePlayer(snap, l.engine.opts.Location, l.engine.now())

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.players[snap.ID]; ok {
		return existing
	}
	l.players[snap.ID] = p
	return p
}

// Evict forfeits the player's pending sessions and drops it from memory.
func (l *Lobby) Evict(id string) error {
	l.mu.RLock()
	p, ok := l.players[id]
	l.mu.RUnlock()
	if !ok || !l.remove(p, time.Time{}) {
		return fmt.Errorf("%w: %s", models.ErrPlayerNotFound, id)
	}
	logger.Log.Infow("Player evicted", "player_id", id)
	return nil
}

// EvictIdle drops players untouched since before now-maxIdle. A player whose
// changes reached the store is restored on its next request.
func (l *Lobby) EvictIdle(maxIdle time.Duration) int {
	cutoff := l.engine.now().Add(-maxIdle)
	evicted := 0
	for _, p := range l.all() {
		if l.remove(p, cutoff) {
			evicted++
		}
	}
	if evicted > 0 {
		logger.Log.Infow("Evicted idle players", "count", evicted, "hosted", l.Len())
	}
	return evicted
}

// remove marks p evicted and unhosts it. With a non-zero idleBefore only a
// player last seen before that time is removed.
func (l *Lobby) remove(p *Player, idleBefore time.Time) bool {
	e := l.engine
	removed := false
	_ = e.locked(p, func(out *outbox) {
		if !idleBefore.IsZero() && !p.lastSeen.Before(idleBefore) {
			return
		}
		for _, s := range p.pendingSessions() {
			e.finish(p, s, models.StatusAbandoned, 0, out)
		}
		p.evicted = true
		out.persist = true
		removed = true
	})
	if !removed {
		return false
	}

	l.mu.Lock()
	if l.players[p.id] == p {
		delete(l.players, p.id)
	}
	l.mu.Unlock()
	return true
}

func (l *Lobby) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.players)
}

func (l *Lobby) all() []*Player {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Player, 0, len(l.players))
	for _, p := range l.players {
		out = append(out, p)
	}
	return out
}
