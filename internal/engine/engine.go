// Package engine settles wagers for every lobby game. It owns the player
// aggregates and is the only code that moves credits in or out of a wallet.
package engine

import (
	"context"
	"fmt"
	"time"

	"casino-lobby/internal/games"
	"casino-lobby/internal/logger"
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
	"casino-lobby/internal/timer"
)

// Broadcaster pushes live session state to the owning player.
type Broadcaster interface {
	BroadcastSessionUpdate(playerID string, view models.SessionView)
	BroadcastSettlement(playerID string, rec models.WagerRecord, balance int64)
}

// Recorder receives wager metrics.
type Recorder interface {
	BetPlaced(game models.GameID, amount int64)
	BetRejected(game models.GameID, reason string)
	Settled(rec models.WagerRecord)
	SessionOpened(game models.GameID)
	SessionClosed(game models.GameID)
	Credited(source string, amount int64)
}

// Store mirrors player state outside the process.
type Store interface {
	SavePlayer(ctx context.Context, snap *models.PlayerSnapshot) error
	AppendWager(ctx context.Context, playerID string, rec models.WagerRecord) error
	LoadPlayer(ctx context.Context, playerID string) (*models.PlayerSnapshot, error)
}

type Options struct {
	Limits          map[models.GameID]models.BetLimits
	StartingCredits int64
	CrashTick       time.Duration
	RevealDelay     time.Duration // 0 leaves instant games to an explicit Settle
	DealerDelay     time.Duration
	Location        *time.Location

	Generator   games.Generator
	Scheduler   timer.Scheduler
	Broadcaster Broadcaster
	Metrics     Recorder
	Store       Store
	Fair        *rng.Fair // set when outcomes come from the provably fair stream
	Now         func() time.Time
}

type Engine struct {
	opts   Options
	gen    games.Generator
	sched  timer.Scheduler
	cast   Broadcaster
	stats  Recorder
	mirror *mirror
	now    func() time.Time
	lobby  *Lobby
}

func New(opts Options) (*Engine, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("engine: a generator is required")
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("engine: a scheduler is required")
	}
	if opts.CrashTick <= 0 {
		return nil, fmt.Errorf("engine: crash tick must be positive, got %s", opts.CrashTick)
	}
	for _, info := range models.Catalogue {
		l, ok := opts.Limits[info.ID]
		if !ok {
			return nil, fmt.Errorf("engine: no bet limits for %s", info.ID)
		}
		if l.MinBet <= 0 || l.MaxBet < l.MinBet {
			return nil, fmt.Errorf("engine: invalid bet limits for %s: [%d, %d]", info.ID, l.MinBet, l.MaxBet)
		}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		opts:   opts,
		gen:    opts.Generator,
		sched:  opts.Scheduler,
		cast:   opts.Broadcaster,
		stats:  opts.Metrics,
		mirror: newMirror(opts.Store, 1024),
		now:    opts.Now,
	}
	if e.cast == nil {
		e.cast = nopBroadcaster{}
	}
	if e.stats == nil {
		e.stats = nopRecorder{}
	}
	e.lobby = newLobby(e)
	return e, nil
}

func (e *Engine) Lobby() *Lobby { return e.lobby }

// Run drains the persistence queue until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.mirror.run(ctx)
}

// Catalogue returns the lobby games with their configured limits.
func (e *Engine) Catalogue() []models.GameInfo {
	out := make([]models.GameInfo, len(models.Catalogue))
	for i, info := range models.Catalogue {
		l := e.opts.Limits[info.ID]
		info.MinBet, info.MaxBet = l.MinBet, l.MaxBet
		out[i] = info
	}
	return out
}

func (e *Engine) Limits(game models.GameID) (models.BetLimits, bool) {
	l, ok := e.opts.Limits[game]
	return l, ok
}

// Verification describes the provably fair stream, or nil when outcomes come
// from the unseeded source.
func (e *Engine) Verification() *models.Verification {
	if e.opts.Fair == nil {
		return nil
	}
	retired := e.opts.Fair.Retired()
	v := &models.Verification{
		ServerHash: e.opts.Fair.ServerHash(),
		ClientSeed: e.opts.Fair.ClientSeed(),
		Nonce:      e.opts.Fair.Nonce(),
		Previous:   make([]models.RetiredSeed, len(retired)),
	}
	for i, r := range retired {
		v.Previous[i] = retiredSeed(r)
	}
	return v
}

// RotateSeed retires the current server seed and returns it for publication.
func (e *Engine) RotateSeed() (models.RetiredSeed, error) {
	if e.opts.Fair == nil {
		return models.RetiredSeed{}, fmt.Errorf("engine: provably fair mode is disabled")
	}
	r, err := e.opts.Fair.Rotate("", e.now())
	if err != nil {
		return models.RetiredSeed{}, fmt.Errorf("failed to rotate server seed: %w", err)
	}
	logger.Log.Infow("Server seed rotated", "retired_hash", r.ServerHash, "draws", r.Draws, "server_hash", e.opts.Fair.ServerHash())
	return retiredSeed(r), nil
}

func retiredSeed(r rng.Retired) models.RetiredSeed {
	return models.RetiredSeed{
		ServerSeed: r.ServerSeed,
		ServerHash: r.ServerHash,
		ClientSeed: r.ClientSeed,
		Draws:      r.Draws,
		RetiredAt:  r.RetiredAt,
	}
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastSessionUpdate(string, models.SessionView)     {}
func (nopBroadcaster) BroadcastSettlement(string, models.WagerRecord, int64) {}

type nopRecorder struct{}

func (nopRecorder) BetPlaced(models.GameID, int64)    {}
func (nopRecorder) BetRejected(models.GameID, string) {}
func (nopRecorder) Settled(models.WagerRecord)        {}
func (nopRecorder) SessionOpened(models.GameID)       {}
func (nopRecorder) SessionClosed(models.GameID)       {}
func (nopRecorder) Credited(string, int64)            {}
