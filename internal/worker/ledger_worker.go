package worker

import (
	"context"
	"fmt"
	"log/slog"

	"stash/internal/amqp"
	"stash/internal/core"
	"stash/internal/notify"
	"stash/internal/services"
	"stash/internal/storage"
)

// LedgerEventWorker turns committed ledger events into account-holder
// notifications. The message carries only identifiers; the worker loads the
// full record from the store before notifying.
type LedgerEventWorker struct {
	storage  *storage.SQLiteRepository
	notifier notify.Notifier
}

func NewLedgerEventWorker(storage *storage.SQLiteRepository, notifier notify.Notifier) *LedgerEventWorker {
	return &LedgerEventWorker{
		storage:  storage,
		notifier: notifier,
	}
}

// HandleLedgerEvent processes a single ledger event message from AMQP.
func (w *LedgerEventWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"transaction_id", msg.TransactionID,
		"type", msg.Type,
		"amount_cents", msg.AmountCents)

	if w.notifier == nil {
		slog.WarnContext(ctx, "No notifier configured, skipping ledger event",
			"transaction_id", msg.TransactionID)
		return nil
	}

	// Expense events carry the expense id, everything else a ledger entry id.
	if msg.Type == services.ExpenseRecorded {
		expense, err := w.storage.GetExpense(ctx, msg.TransactionID)
		if err != nil {
			return fmt.Errorf("get expense from storage: %w", err)
		}
		if err := w.notifier.NotifyExpense(ctx, expense, core.Money{Cents: msg.AmountCents}); err != nil {
			return fmt.Errorf("notify expense: %w", err)
		}
		return nil
	}

	entry, err := w.storage.GetTransaction(ctx, msg.TransactionID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	if err := w.notifier.NotifyTransaction(ctx, entry); err != nil {
		return fmt.Errorf("notify transaction: %w", err)
	}
	return nil
}
