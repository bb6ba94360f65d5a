package games

import (
	"math"

	"casino-lobby/internal/rng"
)

// MaxCrashPoint bounds round length; the raw distribution is unbounded.
const MaxCrashPoint Multiplier = 1_000_000

// CrashPoint samples max(1, floor(100/(r*100))/100) for r uniform in (0, 1].
func CrashPoint(src rng.Source) Multiplier {
	return CrashPointFor(1 - src.Float64())
}

func CrashPointFor(r float64) Multiplier {
	if r <= 0 {
		return MaxCrashPoint
	}
	raw := math.Floor(100 / (r * 100))
	if raw >= float64(MaxCrashPoint) {
		return MaxCrashPoint
	}
	return max(One, Multiplier(raw))
}

type CrashStatus int

const (
	CrashRunning CrashStatus = iota
	CrashCashedOut
	CrashCrashed
)

// CrashRound is the pure state of one crash bet. Both exits are terminal and
// are only taken from CrashRunning, so a round settles once whichever of
// Tick and CashOut gets there first.
type CrashRound struct {
	Point   Multiplier
	Auto    Multiplier // 0 disables auto cash-out
	Current Multiplier
	Step    Multiplier
	Status  CrashStatus
}

func NewCrashRound(point, auto Multiplier) CrashRound {
	return CrashRound{Point: point, Auto: auto, Current: One, Step: 1}
}

func (r CrashRound) Running() bool { return r.Status == CrashRunning }

// Tick advances the multiplier one step. Reaching the crash point ends the
// round as a loss even if the auto cash-out threshold is crossed on the
// same step: cash-out has to happen strictly before the crash point.
func (r CrashRound) Tick() CrashRound {
	if r.Status != CrashRunning {
		return r
	}
	next := r.Current + r.Step
	if next >= r.Point {
		r.Current = r.Point
		r.Status = CrashCrashed
		return r
	}
	r.Current = next
	if r.Auto > 0 && next >= r.Auto {
		r.Status = CrashCashedOut
	}
	return r
}

// CashOut ends a running round at the current multiplier. It reports false
// when the round had already ended, including a round whose crash point is
// the starting multiplier.
func (r CrashRound) CashOut() (CrashRound, bool) {
	if r.Status != CrashRunning {
		return r, false
	}
	if r.Current >= r.Point {
		r.Status = CrashCrashed
		return r, false
	}
	r.Status = CrashCashedOut
	return r, true
}

func (r CrashRound) Payout(bet int64) int64 {
	if r.Status != CrashCashedOut {
		return 0
	}
	return r.Current.Apply(bet)
}
