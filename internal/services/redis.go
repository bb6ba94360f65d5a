package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casino-lobby/internal/config"
	"casino-lobby/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisService mirrors player snapshots and wager history, and backs the
// per-player rate limits.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SavePlayer writes the snapshot without its history and refreshes the TTL of
// the player's wager keys.
func (s *RedisService) SavePlayer(ctx context.Context, snap *models.PlayerSnapshot) error {
	stored := *snap
	stored.History = nil
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	tx := s.client.TxPipeline()
	tx.Set(ctx, fmt.Sprintf(KeyPlayer, snap.ID), data, TTLPlayer)
	tx.Expire(ctx, fmt.Sprintf(KeyPlayerWagers, snap.ID), TTLPlayer)
	tx.Expire(ctx, fmt.Sprintf(KeyWagerData, snap.ID), TTLPlayer)

	if _, err := tx.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// LoadPlayer returns the stored snapshot with its full wager history, most
// recent first. A missing player is reported as models.ErrPlayerNotFound.
func (s *RedisService) LoadPlayer(ctx context.Context, playerID string) (*models.PlayerSnapshot, error) {
	key := fmt.Sprintf(KeyPlayer, playerID)

	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", models.ErrPlayerNotFound, playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	var snap models.PlayerSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	history, err := s.GetWagers(ctx, playerID, 0)
	if err != nil {
		return nil, err
	}
	snap.History = history
	return &snap, nil
}

func (s *RedisService) DeletePlayer(ctx context.Context, playerID string) error {
	return s.client.Del(ctx,
		fmt.Sprintf(KeyPlayer, playerID),
		fmt.Sprintf(KeyPlayerWagers, playerID),
		fmt.Sprintf(KeyWagerData, playerID),
	).Err()
}

// AppendWager stores a settled wager under its player and indexes it by
// settlement time. The index is never trimmed.
func (s *RedisService) AppendWager(ctx context.Context, playerID string, rec models.WagerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal wager: %w", err)
	}

	dataKey := fmt.Sprintf(KeyWagerData, playerID)
	indexKey := fmt.Sprintf(KeyPlayerWagers, playerID)

	tx := s.client.TxPipeline()
	tx.HSet(ctx, dataKey, rec.ID, data)
	tx.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(rec.Timestamp.UnixMicro()),
		Member: rec.ID,
	})
	tx.Expire(ctx, dataKey, TTLPlayer)
	tx.Expire(ctx, indexKey, TTLPlayer)
	tx.Expire(ctx, fmt.Sprintf(KeyPlayer, playerID), TTLPlayer)

	if _, err := tx.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save wager: %w", err)
	}
	return nil
}

// GetWagers returns up to limit wagers, most recent first. Zero means all.
func (s *RedisService) GetWagers(ctx context.Context, playerID string, limit int64) ([]models.WagerRecord, error) {
	indexKey := fmt.Sprintf(KeyPlayerWagers, playerID)

	ids, err := s.client.ZRevRange(ctx, indexKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get wager ids: %w", err)
	}
	if len(ids) == 0 {
		return []models.WagerRecord{}, nil
	}

	values, err := s.client.HMGet(ctx, fmt.Sprintf(KeyWagerData, playerID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers: %w", err)
	}

	records := make([]models.WagerRecord, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("wager %s is indexed but missing", ids[i])
		}

		var rec models.WagerRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wager %s: %w", ids[i], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

var rateLimitScript = redis.NewScript(`
	local count = redis.call("INCR", KEYS[1])
	if count == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	return count
`)

// CheckRateLimit counts one action in a fixed window and reports whether the
// player is still within limit.
func (s *RedisService) CheckRateLimit(ctx context.Context, playerID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, playerID, action)

	count, err := rateLimitScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, playerID, action string) error {
	key := fmt.Sprintf(KeyRateLimit, playerID, action)
	return s.client.Del(ctx, key).Err()
}
