package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

func GenerateSessionID() string {
	return uuid.New().String()
}

func GenerateRecordID() string {
	return uuid.New().String()
}

func GeneratePlayerID() string {
	return uuid.New().String()
}

// Validate checks the bet against the game's limits and selection rules.
func (b *Bet) Validate(limits BetLimits) error {
	if !b.GameID.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownGame, b.GameID)
	}
	if b.Amount < limits.MinBet || b.Amount > limits.MaxBet {
		return fmt.Errorf("%w: %d outside [%d, %d]", ErrInvalidBetAmount, b.Amount, limits.MinBet, limits.MaxBet)
	}

	sel := b.Selection
	switch b.GameID {
	case GameDice:
		switch sel.Prediction {
		case PredictionHigher, PredictionLower:
		case "":
			return fmt.Errorf("%w: dice needs a higher/lower prediction", ErrNoSelectionMade)
		default:
			return fmt.Errorf("%w: prediction %q", ErrInvalidSelection, sel.Prediction)
		}
	case GameRoulette:
		if sel.Number == nil {
			return fmt.Errorf("%w: roulette needs a number", ErrNoSelectionMade)
		}
		if *sel.Number < 0 || *sel.Number > RouletteMaxNumber {
			return fmt.Errorf("%w: roulette number %d", ErrInvalidSelection, *sel.Number)
		}
	case GameKeno:
		if len(sel.Numbers) == 0 {
			return fmt.Errorf("%w: keno needs at least one number", ErrNoSelectionMade)
		}
		if len(sel.Numbers) > KenoMaxPicks {
			return fmt.Errorf("%w: at most %d keno numbers", ErrInvalidSelection, KenoMaxPicks)
		}
		seen := make(map[int]bool, len(sel.Numbers))
		for _, n := range sel.Numbers {
			if n < 1 || n > KenoPoolSize || seen[n] {
				return fmt.Errorf("%w: keno number %d", ErrInvalidSelection, n)
			}
			seen[n] = true
		}
	case GameCrash:
		if sel.AutoCashout != 0 && sel.AutoCashout < 1.01 {
			return fmt.Errorf("%w: auto cashout must be at least 1.01", ErrInvalidSelection)
		}
	}
	return nil
}

// Clone returns a copy that shares no slices with b.
func (b Bet) Clone() Bet {
	c := b
	if b.Selection.Number != nil {
		n := *b.Selection.Number
		c.Selection.Number = &n
	}
	c.Selection.Numbers = slices.Clone(b.Selection.Numbers)
	return c
}
