// Package wallet holds a player's credit balance.
package wallet

import (
	"fmt"
	"sync"

	"casino-lobby/internal/models"
)

// Ledger owns one player's balance. Debits never take the balance below zero;
// they fail and leave it untouched instead.
type Ledger struct {
	mu       sync.Mutex
	balance  int64
	debited  int64
	credited int64
}

// NewLedger opens a ledger with an opening balance. The opening balance is
// not counted as a credit.
func NewLedger(opening int64) *Ledger {
	return &Ledger{balance: opening}
}

func (l *Ledger) Debit(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit %d: %w", amount, models.ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if amount > l.balance {
		return fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientFunds, l.balance, amount)
	}
	l.balance -= amount
	l.debited += amount
	return nil
}

// Credit adds amount to the balance. Zero is accepted and ignored.
func (l *Ledger) Credit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, models.ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance += amount
	l.credited += amount
	return nil
}

func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Totals returns the sum of all debits and all credits since the ledger was
// opened.
func (l *Ledger) Totals() (debited, credited int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debited, l.credited
}
