package engine_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"casino-lobby/internal/engine"
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
)

// jitterRecorder stalls after the player lock is released, widening the gap
// between concurrent calls.
type jitterRecorder struct{}

func (jitterRecorder) BetPlaced(models.GameID, int64)    {}
func (jitterRecorder) BetRejected(models.GameID, string) {}
func (jitterRecorder) Settled(models.WagerRecord)        {}
func (jitterRecorder) SessionOpened(models.GameID)       {}
func (jitterRecorder) SessionClosed(models.GameID)       {}
func (jitterRecorder) Credited(string, int64) {
	time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond)
}

func TestConcurrentDepositsPersistLatestSnapshot(t *testing.T) {
	store := newMemStore()
	h := newHarness(t, &scripted{}, func(o *engine.Options) {
		o.Store = store
		o.Metrics = jitterRecorder{}
	})
	stop := runEngine(t, h.engine)

	const rounds, depositors = 20, 16
	players := make([]*engine.Player, rounds)
	for r := range players {
		p := h.player()
		players[r] = p

		var wg sync.WaitGroup
		for i := 0; i < depositors; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := h.engine.Deposit(p, 1); err != nil {
					t.Errorf("Deposit failed: %v", err)
				}
			}()
		}
		wg.Wait()
	}
	stop()

	for _, p := range players {
		persisted, ok := store.credits(p.ID())
		if !ok {
			t.Fatalf("Player %s was never persisted", p.ID())
		}
		if persisted != p.Balance() || persisted != startingCredits+depositors {
			t.Errorf("Persisted credits %d, live balance %d", persisted, p.Balance())
		}
	}
}

func TestEvictIdlePlayers(t *testing.T) {
	store := newMemStore()
	h := newHarness(t, &scripted{}, func(o *engine.Options) {
		o.Store = store
	})
	stop := runEngine(t, h.engine)
	defer stop()
	lobby := h.engine.Lobby()

	idle := h.player()
	if _, err := h.engine.Deposit(idle, 50); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	busy := h.player()

	h.clock.Add(20 * time.Minute)
	if _, err := h.engine.Deposit(busy, 5); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	fresh := h.player()

	// Reads and sweeps with nothing to do are not activity.
	h.engine.View(idle)
	h.engine.CleanupStale(10 * time.Minute)

	if n := lobby.EvictIdle(10 * time.Minute); n != 1 {
		t.Fatalf("Expected one idle player evicted, got %d", n)
	}
	if lobby.Len() != 2 {
		t.Errorf("Expected busy and fresh players to stay, hosted %d", lobby.Len())
	}
	for _, p := range []*engine.Player{busy, fresh} {
		if got, err := lobby.Player(context.Background(), p.ID()); err != nil || got != p {
			t.Errorf("Active player %s was dropped", p.ID())
		}
	}

	if _, err := h.engine.Deposit(idle, 1); !errors.Is(err, models.ErrPlayerNotFound) {
		t.Errorf("Expected ErrPlayerNotFound on an evicted handle, got %v", err)
	}

	restored, err := lobby.Player(context.Background(), idle.ID())
	if err != nil {
		t.Fatalf("Failed to restore evicted player: %v", err)
	}
	if restored == idle {
		t.Error("Expected a fresh aggregate after eviction")
	}
	if restored.Balance() != startingCredits+50 {
		t.Errorf("Expected restored balance %d, got %d", startingCredits+50, restored.Balance())
	}
	if _, err := h.engine.Deposit(restored, 1); err != nil {
		t.Errorf("Restored player should accept deposits: %v", err)
	}
}

func TestEvictIdleForfeitsPendingSessions(t *testing.T) {
	h := newHarness(t, &scripted{})
	p := h.player()
	if _, err := h.engine.PlaceBet(p, models.Bet{GameID: models.GameSlots, Amount: 100}); err != nil {
		t.Fatalf("Failed to place bet: %v", err)
	}

	h.clock.Add(time.Hour)
	if n := h.engine.Lobby().EvictIdle(30 * time.Minute); n != 1 {
		t.Fatalf("Expected the player evicted, got %d", n)
	}
	if got := h.engine.History(p, 0); len(got) != 1 || got[0].Result != models.ResultLoss {
		t.Errorf("Expected the pending bet forfeited, got %+v", got)
	}
	assertIdentity(t, h.engine, p)
}

func TestRotateSeedPublishesRetired(t *testing.T) {
	fair, err := rng.NewFair("server-seed", "client-seed")
	if err != nil {
		t.Fatalf("Failed to create fair source: %v", err)
	}
	h := newHarness(t, &scripted{}, func(o *engine.Options) {
		o.Fair = fair
	})

	fair.Float64()
	fair.Float64()
	before := h.engine.Verification()
	if before.Nonce != 2 || len(before.Previous) != 0 {
		t.Fatalf("Unexpected verification before rotation: %+v", before)
	}

	retired, err := h.engine.RotateSeed()
	if err != nil {
		t.Fatalf("Failed to rotate: %v", err)
	}
	if retired.ServerSeed != "server-seed" || retired.ServerHash != before.ServerHash || retired.Draws != 2 {
		t.Errorf("Unexpected retired seed %+v", retired)
	}
	if !retired.RetiredAt.Equal(h.clock.Now()) {
		t.Errorf("Expected retirement at engine time, got %v", retired.RetiredAt)
	}

	after := h.engine.Verification()
	if after.Nonce != 0 || after.ServerHash == before.ServerHash {
		t.Errorf("Expected a fresh seed after rotation: %+v", after)
	}
	if len(after.Previous) != 1 || rng.HashSeed(after.Previous[0].ServerSeed) != before.ServerHash {
		t.Errorf("Published seed does not match the hash shown before: %+v", after.Previous)
	}

	plain := newHarness(t, &scripted{})
	if _, err := plain.engine.RotateSeed(); err == nil {
		t.Error("Expected rotation to fail without fair mode")
	}
}
