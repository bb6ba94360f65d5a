package games

import "casino-lobby/internal/rng"

// Generator is the random outcome generator consumed by settlement.
type Generator interface {
	RollDice() DiceRoll
	SpinRoulette() int
	SpinSlots() Reels
	SpinWheel() int
	DrawKeno() []int
	CrashPoint() Multiplier
	NewShoe() *Shoe
}

type sourceGenerator struct {
	src rng.Source
}

func NewGenerator(src rng.Source) Generator {
	return &sourceGenerator{src: src}
}

func (g *sourceGenerator) RollDice() DiceRoll     { return RollDice(g.src) }
func (g *sourceGenerator) SpinRoulette() int      { return SpinRoulette(g.src) }
func (g *sourceGenerator) SpinSlots() Reels       { return SpinSlots(g.src) }
func (g *sourceGenerator) SpinWheel() int         { return SpinWheel(g.src) }
func (g *sourceGenerator) DrawKeno() []int        { return DrawKeno(g.src) }
func (g *sourceGenerator) CrashPoint() Multiplier { return CrashPoint(g.src) }
func (g *sourceGenerator) NewShoe() *Shoe         { return NewShoe(g.src) }
