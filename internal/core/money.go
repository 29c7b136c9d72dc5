// Package core holds the domain model of the funds-allocation engine:
// wallets, savings goals, the transaction ledger, and expenses.
//
// Money is stored as integer cents. Decimal strings coming from callers are
// parsed through github.com/shopspring/decimal so that "12.34" style amounts
// never pass through a float64.
package core

import (
	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string such as "12.34" into Money.
//
// Anything beyond two fractional digits is rounded half away from zero.
// Zero, negative, unparsable and overflowing values are rejected with
// ErrInvalidAmount.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents.IntPart()}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two fractional digits, e.g. "12.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Min returns the smaller of m and other.
func (m Money) Min(other Money) Money {
	if other.Cents < m.Cents {
		return other
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}
