package games

import "casino-lobby/internal/rng"

type Symbol string

const (
	SymbolCherry  Symbol = "cherry"
	SymbolOrange  Symbol = "orange"
	SymbolGrape   Symbol = "grape"
	SymbolDiamond Symbol = "diamond"
	SymbolSeven   Symbol = "seven"
	SymbolSlot    Symbol = "slot"
)

var Symbols = []Symbol{SymbolCherry, SymbolOrange, SymbolGrape, SymbolDiamond, SymbolSeven, SymbolSlot}

const (
	slotsJackpotMul = 50
	slotsPairMul    = 2
)

type Reels [3]Symbol

func SpinSlots(src rng.Source) Reels {
	var r Reels
	for i := range r {
		r[i] = Symbols[src.IntN(len(Symbols))]
	}
	return r
}

// SlotsPayout: three of a kind pays 50x, one adjacent pair pays 2x.
func SlotsPayout(bet int64, r Reels) int64 {
	switch {
	case r[0] == r[1] && r[1] == r[2]:
		return bet * slotsJackpotMul
	case r[0] == r[1] || r[1] == r[2]:
		return bet * slotsPairMul
	}
	return 0
}

func (r Reels) Strings() []string {
	out := make([]string, len(r))
	for i, s := range r {
		out[i] = string(s)
	}
	return out
}
