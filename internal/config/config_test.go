package config_test

import (
	"testing"
	"time"

	"casino-lobby/internal/config"
	"casino-lobby/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StartingCredits != 1000 {
		t.Errorf("Expected starting credits 1000, got %d", cfg.StartingCredits)
	}
	if cfg.CrashTick != 50*time.Millisecond {
		t.Errorf("Expected crash tick 50ms, got %v", cfg.CrashTick)
	}
	if cfg.SeedRotation != 24*time.Hour || cfg.PlayerIdleTTL != 24*time.Hour {
		t.Errorf("Unexpected rotation %v or idle ttl %v", cfg.SeedRotation, cfg.PlayerIdleTTL)
	}

	roulette := cfg.Games["roulette"]
	if roulette.MinBet != 50 || roulette.MaxBet != 5000 {
		t.Errorf("Unexpected roulette limits: %+v", roulette)
	}
	if len(cfg.Games) != 7 {
		t.Errorf("Expected 7 games, got %d", len(cfg.Games))
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STARTING_CREDITS", "2500")
	t.Setenv("GAMES_CRASH_MAX_BET", "9000")
	t.Setenv("CRASH_TICK", "100ms")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StartingCredits != 2500 {
		t.Errorf("Expected starting credits 2500, got %d", cfg.StartingCredits)
	}
	if cfg.Games["crash"].MaxBet != 9000 {
		t.Errorf("Expected crash max bet 9000, got %d", cfg.Games["crash"].MaxBet)
	}
	if cfg.CrashTick != 100*time.Millisecond {
		t.Errorf("Expected crash tick 100ms, got %v", cfg.CrashTick)
	}
}

func TestLoadRejectsInvalidLimits(t *testing.T) {
	t.Setenv("GAMES_DICE_MIN_BET", "500")
	t.Setenv("GAMES_DICE_MAX_BET", "100")

	if _, err := config.Load(); err == nil {
		t.Error("Expected an error for min bet above max bet")
	}
}

func TestLoadRejectsUnknownRNGMode(t *testing.T) {
	t.Setenv("RNG_MODE", "dice-cup")

	if _, err := config.Load(); err == nil {
		t.Error("Expected an error for unknown rng mode")
	}
}

func TestBetLimitsCoverCatalogue(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	limits := cfg.BetLimits()
	for _, info := range models.Catalogue {
		l, ok := limits[info.ID]
		if !ok {
			t.Errorf("No limits for %s", info.ID)
			continue
		}
		want := config.DefaultGameLimits[string(info.ID)]
		if l.MinBet != want.MinBet || l.MaxBet != want.MaxBet {
			t.Errorf("%s: expected [%d, %d], got [%d, %d]", info.ID, want.MinBet, want.MaxBet, l.MinBet, l.MaxBet)
		}
	}
}
