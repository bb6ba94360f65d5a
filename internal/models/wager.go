package models

import "time"

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultPush Result = "push"
)

type WagerRecord struct {
	ID        string    `json:"id" redis:"id"`
	SessionID string    `json:"session_id" redis:"session_id"`
	GameID    GameID    `json:"game_id" redis:"game_id"`
	Amount    int64     `json:"amount" redis:"amount"`
	Payout    int64     `json:"payout" redis:"payout"`
	Result    Result    `json:"result" redis:"result"`
	Profit    int64     `json:"profit" redis:"profit"`
	Timestamp time.Time `json:"timestamp" redis:"timestamp"`
}

func ResultFor(amount, payout int64) Result {
	switch {
	case payout > amount:
		return ResultWin
	case payout == amount && payout > 0:
		return ResultPush
	default:
		return ResultLoss
	}
}
