package games

import (
	"fmt"
	"math"
)

// Multiplier is a payout multiplier in hundredths: 150 is 1.50x.
type Multiplier int64

const One Multiplier = 100

func MultiplierFromFloat(f float64) Multiplier {
	return Multiplier(math.Round(f * 100))
}

func (m Multiplier) Float() float64 {
	return float64(m) / 100
}

// Apply returns floor(bet * m).
func (m Multiplier) Apply(bet int64) int64 {
	return bet * int64(m) / 100
}

func (m Multiplier) String() string {
	return fmt.Sprintf("%.2fx", m.Float())
}
