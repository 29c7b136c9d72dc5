package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"stash/internal/amqp"
	"stash/internal/core"
	"stash/internal/storage"
)

// EventPublisher is the outbound port for post-commit ledger events. A nil
// publisher disables publication; a publish failure never fails the operation
// that already committed.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// WalletService orchestrates wallet operations across SQLite and AMQP.
type WalletService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewWalletService(storage *storage.SQLiteRepository, publisher EventPublisher) *WalletService {
	return &WalletService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateAccount provisions an entity together with its wallet.
func (s *WalletService) CreateAccount(ctx context.Context, entityID, orgID uuid.UUID, role, currency string) (core.Wallet, error) {
	if role == "" {
		role = "member"
	}

	wallet, err := s.storage.CreateAccount(ctx, entityID, orgID, role, currency)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"entity_id", entityID,
		"wallet_id", wallet.WalletID,
		"currency", wallet.Currency)

	return wallet, nil
}

// Wallet returns the current balance view for the entity.
func (s *WalletService) Wallet(ctx context.Context, entityID uuid.UUID) (core.Wallet, error) {
	wallet, err := s.storage.GetWallet(ctx, entityID)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return wallet, nil
}

// Deposit credits the wallet and records the deposit in the ledger.
func (s *WalletService) Deposit(ctx context.Context, entityID uuid.UUID, req core.DepositRequest) (core.Wallet, core.Transaction, error) {
	if err := req.Validate(); err != nil {
		return core.Wallet{}, core.Transaction{}, err
	}
	if req.Description == "" {
		req.Description = "Savings deposit"
	}

	wallet, entry, err := s.storage.CreditWallet(ctx, entityID, req)
	if err != nil {
		return core.Wallet{}, core.Transaction{}, fmt.Errorf("credit wallet: %w", err)
	}

	slog.InfoContext(ctx, "Deposit recorded",
		"entity_id", entityID,
		"transaction_id", entry.TransactionID,
		"amount_cents", entry.Amount.Cents,
		"balance_cents", wallet.Balance.Cents)

	s.publishEvent(ctx, entry)

	return wallet, entry, nil
}

// Withdraw debits the wallet, failing without mutation when the balance does
// not cover the amount.
func (s *WalletService) Withdraw(ctx context.Context, entityID uuid.UUID, amount core.Money, description string) (core.Wallet, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.Wallet{}, core.Transaction{}, err
	}
	if description == "" {
		description = "Withdrawal"
	}

	wallet, entry, err := s.storage.DebitWallet(ctx, entityID, amount, description)
	if err != nil {
		return core.Wallet{}, core.Transaction{}, fmt.Errorf("debit wallet: %w", err)
	}

	slog.InfoContext(ctx, "Withdrawal recorded",
		"entity_id", entityID,
		"transaction_id", entry.TransactionID,
		"amount_cents", entry.Amount.Cents,
		"balance_cents", wallet.Balance.Cents)

	s.publishEvent(ctx, entry)

	return wallet, entry, nil
}

// Transactions returns a page of the entity's ledger, newest first, plus the
// total entry count.
func (s *WalletService) Transactions(ctx context.Context, entityID uuid.UUID, page core.Page) ([]core.Transaction, int64, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()

	entries, total, err := s.storage.ListTransactions(ctx, entityID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return entries, total, nil
}

func (s *WalletService) publishEvent(ctx context.Context, entry core.Transaction) {
	if s.publisher == nil {
		return
	}

	msg := amqp.NewLedgerEventMessage(entry.TransactionID, entry.EntityID, string(entry.Type), entry.Amount.Cents)
	if err := s.publisher.PublishLedgerEvent(ctx, msg); err != nil {
		// The mutation already committed; the event is best effort.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"transaction_id", entry.TransactionID,
			"type", entry.Type,
			"error", err)
	}
}

// Close releases the underlying store.
func (s *WalletService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
