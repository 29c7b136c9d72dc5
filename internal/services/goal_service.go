package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stash/internal/amqp"
	"stash/internal/core"
	"stash/internal/storage"
)

// GoalService orchestrates savings-goal operations.
type GoalService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewGoalService(storage *storage.SQLiteRepository, publisher EventPublisher) *GoalService {
	return &GoalService{
		storage:   storage,
		publisher: publisher,
	}
}

// Create registers a new active goal with nothing saved yet.
func (s *GoalService) Create(ctx context.Context, entityID, orgID uuid.UUID, req core.GoalRequest) (core.SavingsGoal, error) {
	if err := req.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	goal, err := s.storage.CreateGoal(ctx, entityID, orgID, req)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal created",
		"entity_id", entityID,
		"goal_id", goal.GoalID,
		"name", goal.Name,
		"goal_amount_cents", goal.GoalAmount.Cents)

	return goal, nil
}

// List returns the entity's goals, newest first.
func (s *GoalService) List(ctx context.Context, entityID uuid.UUID) ([]core.SavingsGoal, error) {
	goals, err := s.storage.ListGoals(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// Progress returns the goal together with its completion percentage.
func (s *GoalService) Progress(ctx context.Context, entityID, goalID uuid.UUID) (core.SavingsGoal, decimal.Decimal, error) {
	goal, err := s.storage.GetGoal(ctx, entityID, goalID)
	if err != nil {
		return core.SavingsGoal{}, decimal.Zero, fmt.Errorf("get goal: %w", err)
	}

	pct, err := goal.Progress()
	if err != nil {
		return core.SavingsGoal{}, decimal.Zero, fmt.Errorf("goal progress: %w", err)
	}
	return goal, pct, nil
}

// AddSavings moves funds from the wallet into the goal. The wallet debit,
// the goal increment, and the ledger entry commit together or not at all.
func (s *GoalService) AddSavings(ctx context.Context, entityID, goalID uuid.UUID, amount core.Money) (core.SavingsGoal, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.SavingsGoal{}, core.Transaction{}, err
	}

	goal, entry, err := s.storage.AddGoalSavings(ctx, entityID, goalID, amount)
	if err != nil {
		return core.SavingsGoal{}, core.Transaction{}, fmt.Errorf("add goal savings: %w", err)
	}

	slog.InfoContext(ctx, "Goal savings added",
		"entity_id", entityID,
		"goal_id", goalID,
		"transaction_id", entry.TransactionID,
		"amount_cents", amount.Cents,
		"amount_saved_cents", goal.AmountSaved.Cents)

	if s.publisher != nil {
		msg := amqp.NewLedgerEventMessage(entry.TransactionID, entry.EntityID, string(entry.Type), entry.Amount.Cents)
		if err := s.publisher.PublishLedgerEvent(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event",
				"transaction_id", entry.TransactionID,
				"type", entry.Type,
				"error", err)
		}
	}

	return goal, entry, nil
}
