// Package history keeps the append-only record of settled wagers for a player.
package history

import (
	"slices"
	"sync"

	"casino-lobby/internal/models"
)

type Ledger struct {
	mu      sync.RWMutex
	records []models.WagerRecord // oldest first
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Restore rebuilds a ledger from records stored most-recent-first.
func Restore(records []models.WagerRecord) *Ledger {
	l := &Ledger{records: slices.Clone(records)}
	slices.Reverse(l.records)
	return l
}

func (l *Ledger) Append(rec models.WagerRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// All returns every record, most recent first.
func (l *Ledger) All() []models.WagerRecord {
	return l.Recent(0)
}

// Recent returns up to limit records, most recent first. A limit of zero or
// less returns everything.
func (l *Ledger) Recent(limit int) []models.WagerRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.WagerRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// WinRate is the percentage of records that were wins. Pushes count as
// non-wins. An empty ledger has a win rate of zero.
func (l *Ledger) WinRate() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return 0
	}
	return float64(l.wins()) * 100 / float64(len(l.records))
}

func (l *Ledger) NetProfit() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, r := range l.records {
		total += r.Profit
	}
	return total
}

// Summary fills the history part of a player's stats.
func (l *Ledger) Summary() models.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := models.Stats{TotalBets: len(l.records), Wins: l.wins()}
	for _, r := range l.records {
		s.NetProfit += r.Profit
	}
	if s.TotalBets > 0 {
		s.WinRate = float64(s.Wins) * 100 / float64(s.TotalBets)
	}
	return s
}

func (l *Ledger) wins() int {
	wins := 0
	for _, r := range l.records {
		if r.Result == models.ResultWin {
			wins++
		}
	}
	return wins
}
