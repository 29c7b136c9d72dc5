package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stash/internal/amqp"
	"stash/internal/core"
	"stash/internal/storage"
)

// ExpenseRecorded is the event type published for settled expenses. The
// message carries the expense id rather than a ledger entry id because a
// fully goal-funded expense produces no withdrawal entry.
const ExpenseRecorded = "expense_recorded"

// SettlementService coordinates expense settlement: goal savings drain first,
// the wallet covers the remainder.
type SettlementService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewSettlementService(storage *storage.SQLiteRepository, publisher EventPublisher) *SettlementService {
	return &SettlementService{
		storage:   storage,
		publisher: publisher,
	}
}

// Record settles an expense atomically and reports how it was funded.
func (s *SettlementService) Record(ctx context.Context, entityID, orgID uuid.UUID, req core.ExpenseRequest) (core.Expense, core.DeductionBreakdown, error) {
	if err := req.Validate(); err != nil {
		return core.Expense{}, core.DeductionBreakdown{}, err
	}
	if req.ExpenseDate.IsZero() {
		req.ExpenseDate = time.Now().UTC()
	}

	expense, breakdown, err := s.storage.RecordExpense(ctx, entityID, orgID, req)
	if err != nil {
		return core.Expense{}, core.DeductionBreakdown{}, fmt.Errorf("record expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense settled",
		"entity_id", entityID,
		"expense_id", expense.ExpenseID,
		"amount_cents", breakdown.Total.Cents,
		"from_goal_cents", breakdown.FromGoal.Cents,
		"from_wallet_cents", breakdown.FromWallet.Cents)

	if s.publisher != nil {
		msg := amqp.NewLedgerEventMessage(expense.ExpenseID, entityID, ExpenseRecorded, breakdown.Total.Cents)
		if err := s.publisher.PublishLedgerEvent(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event",
				"expense_id", expense.ExpenseID,
				"error", err)
		}
	}

	return expense, breakdown, nil
}

// Expenses returns a page of the entity's expenses, most recent date first.
func (s *SettlementService) Expenses(ctx context.Context, entityID uuid.UUID, page core.Page) ([]core.Expense, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()

	expenses, total, err := s.storage.ListExpenses(ctx, entityID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, total, nil
}

// Summary aggregates the entity's spend per category over [start, end].
// Zero bounds default to the first of the current month and today.
func (s *SettlementService) Summary(ctx context.Context, entityID uuid.UUID, start, end time.Time) (core.ExpenseSummary, error) {
	now := time.Now().UTC()
	if start.IsZero() {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = now
	}

	summary, err := s.storage.ExpenseSummary(ctx, entityID, start, end)
	if err != nil {
		return core.ExpenseSummary{}, fmt.Errorf("expense summary: %w", err)
	}
	return summary, nil
}
