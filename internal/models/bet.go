package models

type Prediction string

const (
	PredictionHigher Prediction = "higher"
	PredictionLower  Prediction = "lower"
)

const (
	RouletteMaxNumber = 36
	KenoPoolSize      = 40
	KenoMaxPicks      = 10
)

// Selection carries the game specific part of a bet. Only the fields the
// chosen game reads are validated.
type Selection struct {
	Prediction  Prediction `json:"prediction,omitempty"`   // dice
	Number      *int       `json:"number,omitempty"`       // roulette
	Numbers     []int      `json:"numbers,omitempty"`      // keno
	AutoCashout float64    `json:"auto_cashout,omitempty"` // crash, 0 disables
}

type Bet struct {
	GameID    GameID    `json:"game_id" binding:"required"`
	Amount    int64     `json:"amount" binding:"required"`
	Selection Selection `json:"selection"`
}

type BetLimits struct {
	MinBet int64
	MaxBet int64
}

type SessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}
