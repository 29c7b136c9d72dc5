package notify

import (
	"context"
	"log/slog"

	"stash/internal/core"
)

// Notifier is the outbound port for telling an account holder about a ledger
// event. Delivery transports (SMS, push) plug in behind this interface.
type Notifier interface {
	NotifyTransaction(ctx context.Context, entry core.Transaction) error
	NotifyExpense(ctx context.Context, expense core.Expense, amount core.Money) error
}

// LogNotifier writes notifications to the structured log. It is the default
// adapter when no delivery transport is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyTransaction(ctx context.Context, entry core.Transaction) error {
	slog.InfoContext(ctx, "Transaction notification",
		"entity_id", entry.EntityID,
		"transaction_id", entry.TransactionID,
		"type", entry.Type,
		"amount", entry.Amount.String(),
		"description", entry.Description)
	return nil
}

func (n *LogNotifier) NotifyExpense(ctx context.Context, expense core.Expense, amount core.Money) error {
	slog.InfoContext(ctx, "Expense notification",
		"entity_id", expense.EntityID,
		"expense_id", expense.ExpenseID,
		"category", expense.Category,
		"amount", amount.String())
	return nil
}
