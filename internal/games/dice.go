package games

import (
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
)

const (
	diceFaces     = 6
	dicePivot     = 7
	dicePayoutMul = 2
)

type DiceRoll [2]int

func (d DiceRoll) Sum() int { return d[0] + d[1] }

func RollDice(src rng.Source) DiceRoll {
	return DiceRoll{src.IntN(diceFaces) + 1, src.IntN(diceFaces) + 1}
}

// DicePayout pays 2x when the prediction matches the side of 7 the sum lands
// on. A sum of exactly 7 loses for both predictions.
func DicePayout(bet int64, prediction models.Prediction, roll DiceRoll) int64 {
	sum := roll.Sum()
	switch {
	case prediction == models.PredictionHigher && sum > dicePivot,
		prediction == models.PredictionLower && sum < dicePivot:
		return bet * dicePayoutMul
	}
	return 0
}
