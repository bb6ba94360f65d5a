package models

import "time"

type SessionStatus string

const (
	StatusBetPlaced  SessionStatus = "bet_placed"
	StatusPlayerTurn SessionStatus = "player_turn"
	StatusDealerTurn SessionStatus = "dealer_turn"
	StatusInProgress SessionStatus = "in_progress"
	StatusCashedOut  SessionStatus = "cashed_out"
	StatusCrashed    SessionStatus = "crashed"
	StatusSettled    SessionStatus = "settled"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether no further action can change the session.
func (s SessionStatus) Terminal() bool {
	switch s {
	case StatusCashedOut, StatusCrashed, StatusSettled, StatusAbandoned:
		return true
	}
	return false
}

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

type Outcome struct {
	Dice        []int    `json:"dice,omitempty"`
	Number      *int     `json:"number,omitempty"`
	Reels       []string `json:"reels,omitempty"`
	Multiplier  float64  `json:"multiplier,omitempty"`
	Drawn       []int    `json:"drawn,omitempty"`
	Matches     int      `json:"matches,omitempty"`
	PlayerTotal int      `json:"player_total,omitempty"`
	DealerTotal int      `json:"dealer_total,omitempty"`
}

type BlackjackView struct {
	PlayerHand  []Card `json:"player_hand"`
	DealerHand  []Card `json:"dealer_hand"`
	PlayerTotal int    `json:"player_total"`
	DealerTotal int    `json:"dealer_total"`
}

type CrashView struct {
	Multiplier  float64 `json:"multiplier"`
	AutoCashout float64 `json:"auto_cashout,omitempty"`
	CrashPoint  float64 `json:"crash_point,omitempty"` // revealed once the round ends
}

type SessionView struct {
	ID        string         `json:"id"`
	PlayerID  string         `json:"player_id"`
	GameID    GameID         `json:"game_id"`
	Amount    int64          `json:"amount"`
	Selection Selection      `json:"selection"`
	Status    SessionStatus  `json:"status"`
	Outcome   *Outcome       `json:"outcome,omitempty"`
	Blackjack *BlackjackView `json:"blackjack,omitempty"`
	Crash     *CrashView     `json:"crash,omitempty"`
	Record    *WagerRecord   `json:"record,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
