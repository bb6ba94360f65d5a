package services

import "time"

const (
	KeyPlayer       = "player:%s"
	KeyPlayerWagers = "player:%s:wagers"     // sorted set of wager ids by settlement time
	KeyWagerData    = "player:%s:wager_data" // hash of wager id to record
	KeyRateLimit    = "ratelimit:%s:%s"

	// Every key of a player shares this TTL and is refreshed on each write,
	// so history expires together with the balance it explains.
	TTLPlayer = 30 * 24 * time.Hour // 30 days

	DefaultRateLimitBets    = 30  // Max 30 bets per minute
	DefaultRateLimitActions = 120 // Max 120 game actions per minute
)
