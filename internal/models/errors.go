package models

import "errors"

// Bet input errors. None of them change player state.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidBetAmount  = errors.New("invalid bet amount")
	ErrNoSelectionMade   = errors.New("no selection made")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrUnknownGame       = errors.New("unknown game")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Session and lookup errors.
var (
	ErrSessionNotActive    = errors.New("session not active")
	ErrSessionPending      = errors.New("previous bet still pending for this game")
	ErrSessionNotFound     = errors.New("session not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrBonusAlreadyClaimed = errors.New("daily bonus already claimed")
)
