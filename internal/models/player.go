package models

import "time"

type PlayerView struct {
	ID            string    `json:"id"`
	Credits       int64     `json:"credits"`
	VIPLevel      int       `json:"vip_level"`
	TotalWagered  int64     `json:"total_wagered"`
	NextTierAt    int64     `json:"next_tier_at,omitempty"`
	LastBonusDate string    `json:"last_bonus_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Stats struct {
	TotalBets    int     `json:"total_bets"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"win_rate"`
	NetProfit    int64   `json:"net_profit"`
	TotalWagered int64   `json:"total_wagered"`
	VIPLevel     int     `json:"vip_level"`
	NextTierAt   int64   `json:"next_tier_at,omitempty"`
}

// PlayerSnapshot is the persisted form of a player aggregate.
type PlayerSnapshot struct {
	ID            string        `json:"id"`
	Credits       int64         `json:"credits"`
	TotalWagered  int64         `json:"total_wagered"`
	VIPLevel      int           `json:"vip_level"`
	LastBonusDate string        `json:"last_bonus_date"`
	CreatedAt     time.Time     `json:"created_at"`
	History       []WagerRecord `json:"history,omitempty"`
}

type BalanceResponse struct {
	Balance      int64 `json:"balance"`
	TotalWagered int64 `json:"total_wagered"`
	VIPLevel     int   `json:"vip_level"`
}

type Verification struct {
	ServerHash string        `json:"server_hash"`
	ClientSeed string        `json:"client_seed"`
	Nonce      int64         `json:"nonce"`
	Previous   []RetiredSeed `json:"previous"`
}

// RetiredSeed is a server seed published after rotation. Its draws used
// nonces 0 through Draws-1.
type RetiredSeed struct {
	ServerSeed string    `json:"server_seed"`
	ServerHash string    `json:"server_hash"`
	ClientSeed string    `json:"client_seed"`
	Draws      int64     `json:"draws"`
	RetiredAt  time.Time `json:"retired_at"`
}
