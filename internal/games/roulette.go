package games

import (
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
)

const roulettePayoutMul = 35

func SpinRoulette(src rng.Source) int {
	return src.IntN(models.RouletteMaxNumber + 1)
}

// RoulettePayout settles a straight-up bet.
func RoulettePayout(bet int64, selected, drawn int) int64 {
	if selected == drawn {
		return bet * roulettePayoutMul
	}
	return 0
}
