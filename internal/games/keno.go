package games

import (
	"slices"

	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
)

const KenoDraws = 20

// KenoPaytable maps match count to a multiple of the bet.
var KenoPaytable = map[int]int64{
	3:  1,
	4:  2,
	5:  10,
	6:  50,
	7:  100,
	8:  500,
	9:  1000,
	10: 10000,
}

// DrawKeno draws KenoDraws distinct numbers from 1..KenoPoolSize with a
// partial Fisher-Yates shuffle. The result is in draw order.
func DrawKeno(src rng.Source) []int {
	pool := make([]int, models.KenoPoolSize)
	for i := range pool {
		pool[i] = i + 1
	}
	for i := 0; i < KenoDraws; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:KenoDraws]
}

func KenoMatches(picks, drawn []int) int {
	matches := 0
	for _, p := range picks {
		if slices.Contains(drawn, p) {
			matches++
		}
	}
	return matches
}

func KenoPayout(bet int64, matches int) int64 {
	return bet * KenoPaytable[matches]
}
