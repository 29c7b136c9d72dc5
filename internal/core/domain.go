package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionDeposit        TransactionType = "deposit"
	TransactionWithdrawal     TransactionType = "withdrawal"
	TransactionGoalAllocation TransactionType = "goal_allocation"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

type (
	TransactionType string

	GoalStatus string

	// Wallet is the account holder's general-purpose balance. One wallet per
	// entity, created alongside the account. Balance never goes below zero;
	// TotalSaved accumulates lifetime deposits and never decreases.
	Wallet struct {
		WalletID   uuid.UUID
		EntityID   uuid.UUID
		OrgID      uuid.UUID
		Balance    Money
		TotalSaved Money
		Currency   string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// SavingsGoal is a named sub-allocation of the wallet with its own
	// progress tracking. AmountSaved may exceed GoalAmount; there is no hard
	// cap. Goals are never deleted, only moved through statuses.
	SavingsGoal struct {
		GoalID      uuid.UUID
		EntityID    uuid.UUID
		OrgID       uuid.UUID
		Name        string
		GoalAmount  Money
		AmountSaved Money
		GoalType    string
		TargetDate  *time.Time
		Status      GoalStatus
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Transaction is an immutable ledger entry mirroring a wallet balance
	// change. Deposit entries raise the balance, withdrawal and
	// goal_allocation entries lower it.
	Transaction struct {
		TransactionID uuid.UUID
		WalletID      uuid.UUID
		EntityID      uuid.UUID
		OrgID         uuid.UUID
		Amount        Money
		Type          TransactionType
		Description   string
		CreatedAt     time.Time
	}

	// Expense records a spend. GoalID is a weak reference: the goal may later
	// be cancelled without touching the expense row. GoalName is populated on
	// reads for convenience and is empty when no goal was involved.
	Expense struct {
		ExpenseID   uuid.UUID
		EntityID    uuid.UUID
		OrgID       uuid.UUID
		GoalID      *uuid.UUID
		GoalName    string
		Amount      Money
		Category    string
		Description string
		ExpenseDate time.Time
		CreatedAt   time.Time
	}

	// DeductionBreakdown reports how an expense was satisfied.
	// FromGoal + FromWallet always equals Total.
	DeductionBreakdown struct {
		FromGoal   Money
		FromWallet Money
		Total      Money
	}
)

// Progress returns the goal's completion percentage, rounded to two decimal
// places. AmountSaved above GoalAmount yields more than 100. A zero target is
// unreachable through creation and reported as ErrInvalidState rather than
// dividing by zero.
func (g SavingsGoal) Progress() (decimal.Decimal, error) {
	if g.GoalAmount.Cents == 0 {
		return decimal.Zero, ErrInvalidState
	}
	pct := g.AmountSaved.Decimal().
		Div(g.GoalAmount.Decimal()).
		Mul(decimal.NewFromInt(100))
	return pct.Round(2), nil
}

// DepositRequest credits the caller's wallet.
type DepositRequest struct {
	Amount         Money
	Description    string
	IdempotencyKey string
}

func (r DepositRequest) Validate() error {
	return r.Amount.Validate()
}

// GoalRequest creates a new savings goal.
type GoalRequest struct {
	Name       string
	GoalAmount Money
	GoalType   string
	TargetDate *time.Time
}

func (r GoalRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyGoalName
	}
	return r.GoalAmount.Validate()
}

// ExpenseRequest records a spend, optionally drawing a goal's savings first.
type ExpenseRequest struct {
	GoalID         *uuid.UUID
	Amount         Money
	Category       string
	Description    string
	ExpenseDate    time.Time
	IdempotencyKey string
}

func (r ExpenseRequest) Validate() error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Pagination defaults and cap for history listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is offset-based pagination for ledger and expense history.
// A zero Limit means DefaultPageLimit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Validate() error {
	if p.Limit < 0 || p.Offset < 0 {
		return ErrInvalidPagination
	}
	return nil
}

// Normalize applies the default limit and the cap.
func (p Page) Normalize() Page {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
