// Package progression tracks lifetime wagering, VIP tiers and the daily bonus.
package progression

import (
	"sync"
	"time"
)

// TierThresholds[i] is the total wagered needed for level i+1.
var TierThresholds = []int64{0, 5000, 10000, 25000, 50000}

const (
	MaxLevel      = 5
	BonusBase     = 100
	BonusPerLevel = 50
	dateLayout    = "2006-01-02"
)

// Tier maps a lifetime wagered total to a VIP level.
func Tier(totalWagered int64) int {
	level := 1
	for i, threshold := range TierThresholds {
		if totalWagered >= threshold {
			level = i + 1
		}
	}
	return level
}

// NextThreshold returns the wagered total for the next level, or 0 at the top.
func NextThreshold(level int) int64 {
	if level >= MaxLevel {
		return 0
	}
	return TierThresholds[level]
}

func DailyBonus(level int) int64 {
	return BonusBase + int64(level-1)*BonusPerLevel
}

type Tracker struct {
	mu            sync.Mutex
	totalWagered  int64
	level         int
	lastBonusDate string
	loc           *time.Location
}

func NewTracker(loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{level: 1, loc: loc}
}

// Restore rebuilds a tracker from persisted values. The stored level is kept
// if it is above the one derived from totalWagered, so tiers never drop.
func Restore(loc *time.Location, totalWagered int64, level int, lastBonusDate string) *Tracker {
	t := NewTracker(loc)
	t.totalWagered = totalWagered
	t.level = max(level, Tier(totalWagered))
	t.lastBonusDate = lastBonusDate
	return t
}

// RecordWager adds a placed bet to the lifetime total and returns the new total.
func (t *Tracker) RecordWager(amount int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount > 0 {
		t.totalWagered += amount
	}
	t.level = max(t.level, Tier(t.totalWagered))
	return t.totalWagered
}

func (t *Tracker) TotalWagered() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalWagered
}

func (t *Tracker) Level() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

func (t *Tracker) LastBonusDate() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastBonusDate
}

// ClaimDailyBonus grants the tier-scaled bonus once per calendar date in the
// tracker's location. It returns false when today's bonus was already taken.
// The caller is responsible for crediting the amount.
func (t *Tracker) ClaimDailyBonus(now time.Time) (int64, bool) {
	today := now.In(t.loc).Format(dateLayout)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastBonusDate == today {
		return 0, false
	}
	t.lastBonusDate = today
	return DailyBonus(t.level), true
}

func (t *Tracker) View() (total int64, level int, next int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalWagered, t.level, NextThreshold(t.level)
}
