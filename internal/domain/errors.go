package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPaused            = errors.New("platform is paused")
	ErrInvalidBet        = errors.New("invalid bet parameters")
	ErrNothingToClaim    = errors.New("nothing to claim")
	ErrTxReverted        = errors.New("transaction reverted")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserRejected      = errors.New("transaction was rejected")
	ErrLockHeld          = errors.New("lock already held")
)
