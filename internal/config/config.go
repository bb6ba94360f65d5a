package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"casino-lobby/internal/models"
)

type Config struct {
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`

	RedisURL  string `mapstructure:"redis_url"`
	RedisPass string `mapstructure:"redis_pass"`
	RedisDB   int    `mapstructure:"redis_db"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	StartingCredits int64         `mapstructure:"starting_credits"`
	CrashTick       time.Duration `mapstructure:"crash_tick"`
	RevealDelay     time.Duration `mapstructure:"reveal_delay"`
	DealerDelay     time.Duration `mapstructure:"dealer_delay"`
	BonusTimezone   string        `mapstructure:"bonus_timezone"`

	RNGMode      string        `mapstructure:"rng_mode"` // crypto, hmac
	ServerSeed   string        `mapstructure:"server_seed"`
	SeedRotation time.Duration `mapstructure:"seed_rotation"` // 0 keeps one seed for the process lifetime

	// Players idle this long are dropped from memory. Without Redis they cannot
	// come back, so the default matches the token lifetime.
	PlayerIdleTTL time.Duration `mapstructure:"player_idle_ttl"`

	MetricsNamespace string `mapstructure:"metrics_namespace"`

	Games map[string]GameLimits `mapstructure:"games"`
}

type GameLimits struct {
	MinBet int64 `mapstructure:"min_bet"`
	MaxBet int64 `mapstructure:"max_bet"`
}

// DefaultGameLimits mirrors the lobby catalogue.
var DefaultGameLimits = map[string]GameLimits{
	"slots":     {MinBet: 10, MaxBet: 1000},
	"roulette":  {MinBet: 50, MaxBet: 5000},
	"dice":      {MinBet: 10, MaxBet: 1000},
	"blackjack": {MinBet: 50, MaxBet: 5000},
	"wheel":     {MinBet: 10, MaxBet: 1000},
	"keno":      {MinBet: 10, MaxBet: 1000},
	"crash":     {MinBet: 10, MaxBet: 5000},
}

// Load reads an optional config.yaml from paths and then the process
// environment, which takes precedence.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// AutomaticEnv only applies to keys viper already knows about, so the
	// per-game limits are resolved key by key.
	cfg.Games = make(map[string]GameLimits, len(DefaultGameLimits))
	for id := range DefaultGameLimits {
		cfg.Games[id] = GameLimits{
			MinBet: v.GetInt64("games." + id + ".min_bet"),
			MaxBet: v.GetInt64("games." + id + ".max_bet"),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_pass", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("starting_credits", 1000)
	v.SetDefault("crash_tick", 50*time.Millisecond)
	v.SetDefault("reveal_delay", time.Duration(0))
	v.SetDefault("dealer_delay", time.Second)
	v.SetDefault("bonus_timezone", "UTC")
	v.SetDefault("rng_mode", "crypto")
	v.SetDefault("server_seed", "")
	v.SetDefault("seed_rotation", 24*time.Hour)
	v.SetDefault("player_idle_ttl", 24*time.Hour)
	v.SetDefault("metrics_namespace", "casino")

	for id, limits := range DefaultGameLimits {
		v.SetDefault("games."+id+".min_bet", limits.MinBet)
		v.SetDefault("games."+id+".max_bet", limits.MaxBet)
	}
}

func (c *Config) Validate() error {
	if c.StartingCredits < 0 {
		return fmt.Errorf("starting_credits must not be negative")
	}
	if c.CrashTick <= 0 {
		return fmt.Errorf("crash_tick must be positive")
	}
	if c.SeedRotation < 0 {
		return fmt.Errorf("seed_rotation must not be negative")
	}
	if c.PlayerIdleTTL <= 0 {
		return fmt.Errorf("player_idle_ttl must be positive")
	}
	if c.RNGMode != "crypto" && c.RNGMode != "hmac" {
		return fmt.Errorf("unknown rng_mode %q", c.RNGMode)
	}
	for id, limits := range c.Games {
		if limits.MinBet <= 0 || limits.MaxBet < limits.MinBet {
			return fmt.Errorf("invalid bet limits for %s: [%d, %d]", id, limits.MinBet, limits.MaxBet)
		}
	}
	if _, err := time.LoadLocation(c.BonusTimezone); err != nil {
		return fmt.Errorf("invalid bonus_timezone: %w", err)
	}
	return nil
}

// Location returns the calendar used for daily bonus bookkeeping.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BonusTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) BetLimits() map[models.GameID]models.BetLimits {
	out := make(map[models.GameID]models.BetLimits, len(c.Games))
	for id, limits := range c.Games {
		out[models.GameID(id)] = models.BetLimits{MinBet: limits.MinBet, MaxBet: limits.MaxBet}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
