package core

import (
	"errors"
	"fmt"
)

// Input validation errors.
var (
	ErrInvalidAmount     = errors.New("amount must be a positive decimal")
	ErrEmptyCategory     = errors.New("expense category is required")
	ErrEmptyGoalName     = errors.New("goal name is required")
	ErrInvalidPagination = errors.New("limit and offset must be non-negative")
)

// Domain errors.
var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidState       = errors.New("invalid state")
	ErrDuplicateOperation = errors.New("operation already applied")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// ErrInsufficientFunds is the match target for errors.Is; the concrete error
// is always an *InsufficientFundsError carrying the amounts.
var ErrInsufficientFunds = errors.New("insufficient funds")

// InsufficientFundsError reports a debit or settlement that the available
// funds cannot cover. Need is the amount that was required from the wallet,
// Have the balance at the time of the attempt.
type InsufficientFundsError struct {
	Need Money
	Have Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s", e.Need, e.Have)
}

// Is makes errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall returns how much was missing.
func (e *InsufficientFundsError) Shortfall() Money {
	return e.Need.Sub(e.Have)
}
