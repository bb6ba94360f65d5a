package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"casino-lobby/internal/engine"
	"casino-lobby/internal/games"
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
	"casino-lobby/internal/timer"
)

const startingCredits = 1000

var testLimits = map[models.GameID]models.BetLimits{
	models.GameSlots:     {MinBet: 10, MaxBet: 1000},
	models.GameRoulette:  {MinBet: 50, MaxBet: 5000},
	models.GameDice:      {MinBet: 10, MaxBet: 1000},
	models.GameBlackjack: {MinBet: 50, MaxBet: 5000},
	models.GameWheel:     {MinBet: 10, MaxBet: 1000},
	models.GameKeno:      {MinBet: 10, MaxBet: 1000},
	models.GameCrash:     {MinBet: 10, MaxBet: 5000},
}

// scripted returns fixed outcomes so payouts are known in advance.
type scripted struct {
	mu       sync.Mutex
	dice     games.DiceRoll
	roulette int
	reels    games.Reels
	wheel    int
	keno     []int
	crash    []games.Multiplier // consumed in order, the last one repeats
	shoe     []games.Card
}

func (g *scripted) RollDice() games.DiceRoll { return g.dice }
func (g *scripted) SpinRoulette() int        { return g.roulette }
func (g *scripted) SpinSlots() games.Reels   { return g.reels }
func (g *scripted) SpinWheel() int           { return g.wheel }
func (g *scripted) DrawKeno() []int          { return append([]int(nil), g.keno...) }

func (g *scripted) CrashPoint() games.Multiplier {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.crash) == 0 {
		return 200
	}
	p := g.crash[0]
	if len(g.crash) > 1 {
		g.crash = g.crash[1:]
	}
	return p
}

func (g *scripted) NewShoe() *games.Shoe {
	return games.NewShoeFromCards(rng.NewSeeded(7), g.shoe...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type MockBroadcaster struct {
	mu       sync.Mutex
	updates  []models.SessionView
	settled  []models.WagerRecord
	balances []int64
}

func (b *MockBroadcaster) BroadcastSessionUpdate(playerID string, view models.SessionView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, view)
}

func (b *MockBroadcaster) BroadcastSettlement(playerID string, rec models.WagerRecord, balance int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settled = append(b.settled, rec)
	b.balances = append(b.balances, balance)
}

func (b *MockBroadcaster) Settlements() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.settled)
}

type memStore struct {
	mu      sync.Mutex
	players map[string]models.PlayerSnapshot
	wagers  map[string][]models.WagerRecord // most recent first
}

func newMemStore() *memStore {
	return &memStore{
		players: make(map[string]models.PlayerSnapshot),
		wagers:  make(map[string][]models.WagerRecord),
	}
}

func (s *memStore) SavePlayer(_ context.Context, snap *models.PlayerSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[snap.ID] = *snap
	return nil
}

func (s *memStore) AppendWager(_ context.Context, playerID string, rec models.WagerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wagers[playerID] = append([]models.WagerRecord{rec}, s.wagers[playerID]...)
	return nil
}

func (s *memStore) LoadPlayer(_ context.Context, playerID string) (*models.PlayerSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.players[playerID]
	if !ok {
		return nil, models.ErrPlayerNotFound
	}
	snap.History = append([]models.WagerRecord(nil), s.wagers[playerID]...)
	return &snap, nil
}

func (s *memStore) wagerCount(playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wagers[playerID])
}

type harness struct {
	engine *engine.Engine
	sched  *timer.Manual
	cast   *MockBroadcaster
	clock  *clock
	gen    *scripted
}

func newHarness(t *testing.T, gen *scripted, configure ...func(*engine.Options)) *harness {
	t.Helper()

	h := &harness{
		sched: timer.NewManual(),
		cast:  &MockBroadcaster{},
		clock: &clock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)},
		gen:   gen,
	}
	opts := engine.Options{
		Limits:          testLimits,
		StartingCredits: startingCredits,
		CrashTick:       50 * time.Millisecond,
		Generator:       gen,
		Scheduler:       h.sched,
		Broadcaster:     h.cast,
		Now:             h.clock.Now,
	}
	for _, fn := range configure {
		fn(&opts)
	}

	e, err := engine.New(opts)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	h.engine = e
	return h
}

func (h *harness) player() *engine.Player {
	return h.engine.Lobby().CreatePlayer()
}

func intPtr(n int) *int { return &n }

func assertIdentity(t *testing.T, e *engine.Engine, p *engine.Player) {
	t.Helper()
	debited, credited := e.Totals(p)
	if got, want := p.Balance(), startingCredits-debited+credited; got != want {
		t.Errorf("Balance %d does not match opening %d - debited %d + credited %d", got, startingCredits, debited, credited)
	}
}

func (s *memStore) credits(playerID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.players[playerID]
	return snap.Credits, ok
}

// runEngine starts the persistence loop. The returned stop drains it.
func runEngine(t *testing.T, e *engine.Engine) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}
