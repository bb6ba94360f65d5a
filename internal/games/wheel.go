package games

import "casino-lobby/internal/rng"

type Segment struct {
	Multiplier  int64
	Probability float64
}

// WheelSegments sum to 1.0 and are drawn in table order.
var WheelSegments = []Segment{
	{Multiplier: 2, Probability: 0.30},
	{Multiplier: 3, Probability: 0.25},
	{Multiplier: 5, Probability: 0.20},
	{Multiplier: 10, Probability: 0.15},
	{Multiplier: 20, Probability: 0.07},
	{Multiplier: 50, Probability: 0.03},
}

// SpinWheel returns the index of the first segment whose cumulative
// probability reaches r. Float rounding can leave the total a hair under 1,
// in which case the last segment is selected.
func SpinWheel(src rng.Source) int {
	return SelectSegment(src.Float64())
}

func SelectSegment(r float64) int {
	cumulative := 0.0
	for i, seg := range WheelSegments {
		cumulative += seg.Probability
		if cumulative >= r {
			return i
		}
	}
	return len(WheelSegments) - 1
}

func WheelPayout(bet int64, segment int) int64 {
	return bet * WheelSegments[segment].Multiplier
}
