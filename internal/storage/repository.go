// Package storage persists wallets, savings goals, the transaction ledger and
// expenses in SQLite.
//
// Every mutation that touches more than one row runs inside a single database
// transaction: either all writes commit or none do. Balance sufficiency is
// enforced with conditional updates (UPDATE ... WHERE balance_cents >= ?)
// rather than read-then-write, so two concurrent debits can never jointly
// overdraw a wallet.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"stash/internal/core"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string, busyTimeout time.Duration) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_time_format=sqlite&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		dbPath, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; serializing at the pool keeps
	// transactions from ever seeing SQLITE_BUSY mid-flight.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// storeErr tags infrastructure failures so callers can map them to a retryable
// StoreUnavailable condition while keeping the underlying cause in the chain.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// withTx runs fn inside one transaction. Any error from fn rolls everything
// back; no partial state is ever visible to other callers.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// CreateAccount provisions an entity together with its wallet, in one
// transaction. Every account holder owns exactly one wallet from the moment
// the account exists.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, entityID, orgID uuid.UUID, role, currency string) (core.Wallet, error) {
	now := time.Now().UTC()
	wallet := core.Wallet{
		WalletID:  uuid.New(),
		EntityID:  entityID,
		OrgID:     orgID,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entities (entity_id, org_id, role, created_at) VALUES (?, ?, ?, ?)`,
			entityID, orgID, role, now)
		if isUniqueViolation(err) {
			return core.ErrAccountExists
		}
		if err != nil {
			return storeErr("insert entity", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO wallets (wallet_id, entity_id, org_id, balance_cents, total_saved_cents, currency, created_at, updated_at)
			 VALUES (?, ?, ?, 0, 0, ?, ?, ?)`,
			wallet.WalletID, entityID, orgID, currency, now, now)
		if err != nil {
			return storeErr("insert wallet", err)
		}
		return nil
	})
	if err != nil {
		return core.Wallet{}, err
	}

	slog.InfoContext(ctx, "Account provisioned",
		"entity_id", entityID, "wallet_id", wallet.WalletID, "currency", currency)
	return wallet, nil
}

// GetWallet returns the wallet owned by entityID.
func (r *SQLiteRepository) GetWallet(ctx context.Context, entityID uuid.UUID) (core.Wallet, error) {
	return scanWallet(r.db.QueryRowContext(ctx, walletQuery+` WHERE entity_id = ?`, entityID))
}

const walletQuery = `SELECT wallet_id, entity_id, org_id, balance_cents, total_saved_cents, currency, created_at, updated_at FROM wallets`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (core.Wallet, error) {
	var w core.Wallet
	err := row.Scan(&w.WalletID, &w.EntityID, &w.OrgID,
		&w.Balance.Cents, &w.TotalSaved.Cents, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	if err != nil {
		return core.Wallet{}, storeErr("scan wallet", err)
	}
	return w, nil
}

func getWalletTx(ctx context.Context, tx *sql.Tx, entityID uuid.UUID) (core.Wallet, error) {
	return scanWallet(tx.QueryRowContext(ctx, walletQuery+` WHERE entity_id = ?`, entityID))
}

// CreditWallet raises the balance and the lifetime total-saved counter by the
// deposit amount and appends the mirroring ledger entry, atomically.
func (r *SQLiteRepository) CreditWallet(ctx context.Context, entityID uuid.UUID, req core.DepositRequest) (core.Wallet, core.Transaction, error) {
	var (
		wallet core.Wallet
		entry  core.Transaction
	)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		wallet, err = getWalletTx(ctx, tx, entityID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			`UPDATE wallets
			 SET balance_cents = balance_cents + ?, total_saved_cents = total_saved_cents + ?, updated_at = ?
			 WHERE wallet_id = ?`,
			req.Amount.Cents, req.Amount.Cents, now, wallet.WalletID)
		if err != nil {
			return storeErr("credit wallet", err)
		}

		entry, err = appendEntry(ctx, tx, wallet, core.TransactionDeposit, req.Amount, req.Description, req.IdempotencyKey)
		if err != nil {
			return err
		}

		wallet.Balance = wallet.Balance.Add(req.Amount)
		wallet.TotalSaved = wallet.TotalSaved.Add(req.Amount)
		wallet.UpdatedAt = now
		return nil
	})
	if err != nil {
		return core.Wallet{}, core.Transaction{}, err
	}
	return wallet, entry, nil
}

// DebitWallet lowers the balance by amount, rejecting the debit if it would
// take the balance below zero. The sufficiency check and the decrement are a
// single conditional update evaluated against the transactional snapshot.
func (r *SQLiteRepository) DebitWallet(ctx context.Context, entityID uuid.UUID, amount core.Money, description string) (core.Wallet, core.Transaction, error) {
	var (
		wallet core.Wallet
		entry  core.Transaction
	)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		wallet, err = getWalletTx(ctx, tx, entityID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := debitWalletTx(ctx, tx, wallet, amount, now); err != nil {
			return err
		}

		entry, err = appendEntry(ctx, tx, wallet, core.TransactionWithdrawal, amount, description, "")
		if err != nil {
			return err
		}

		wallet.Balance = wallet.Balance.Sub(amount)
		wallet.UpdatedAt = now
		return nil
	})
	if err != nil {
		return core.Wallet{}, core.Transaction{}, err
	}
	return wallet, entry, nil
}

// debitWalletTx performs the conditional decrement. Zero rows affected means
// the balance no longer covers the amount.
func debitWalletTx(ctx context.Context, tx *sql.Tx, wallet core.Wallet, amount core.Money, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents - ?, updated_at = ?
		 WHERE wallet_id = ? AND balance_cents >= ?`,
		amount.Cents, now, wallet.WalletID, amount.Cents)
	if err != nil {
		return storeErr("debit wallet", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("debit wallet rows", err)
	}
	if n == 0 {
		return &core.InsufficientFundsError{Need: amount, Have: wallet.Balance}
	}
	return nil
}

// appendEntry inserts one immutable ledger row. A duplicate idempotency key
// aborts the surrounding transaction with ErrDuplicateOperation.
func appendEntry(ctx context.Context, tx *sql.Tx, wallet core.Wallet, txType core.TransactionType, amount core.Money, description, idemKey string) (core.Transaction, error) {
	entry := core.Transaction{
		TransactionID: uuid.New(),
		WalletID:      wallet.WalletID,
		EntityID:      wallet.EntityID,
		OrgID:         wallet.OrgID,
		Amount:        amount,
		Type:          txType,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}

	var key any
	if idemKey != "" {
		key = idemKey
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (transaction_id, wallet_id, entity_id, org_id, amount_cents, transaction_type, description, idempotency_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TransactionID, entry.WalletID, entry.EntityID, entry.OrgID,
		entry.Amount.Cents, string(entry.Type), entry.Description, key, entry.CreatedAt)
	if isUniqueViolation(err) {
		return core.Transaction{}, core.ErrDuplicateOperation
	}
	if err != nil {
		return core.Transaction{}, storeErr("append ledger entry", err)
	}
	return entry, nil
}

// CreateGoal inserts a new savings goal starting at zero saved.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, entityID, orgID uuid.UUID, req core.GoalRequest) (core.SavingsGoal, error) {
	now := time.Now().UTC()
	goal := core.SavingsGoal{
		GoalID:     uuid.New(),
		EntityID:   entityID,
		OrgID:      orgID,
		Name:       req.Name,
		GoalAmount: req.GoalAmount,
		GoalType:   req.GoalType,
		TargetDate: req.TargetDate,
		Status:     core.GoalActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var target sql.NullTime
	if req.TargetDate != nil {
		target = sql.NullTime{Time: *req.TargetDate, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (goal_id, entity_id, org_id, goal_name, goal_amount_cents, amount_saved_cents, goal_type, target_date, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?)`,
		goal.GoalID, entityID, orgID, goal.Name, goal.GoalAmount.Cents,
		goal.GoalType, target, string(goal.Status), now, now)
	if err != nil {
		return core.SavingsGoal{}, storeErr("insert goal", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"goal_id", goal.GoalID, "entity_id", entityID,
		"goal_amount_cents", goal.GoalAmount.Cents, "goal_type", goal.GoalType)
	return goal, nil
}

const goalQuery = `SELECT goal_id, entity_id, org_id, goal_name, goal_amount_cents, amount_saved_cents, goal_type, target_date, status, created_at, updated_at FROM savings_goals`

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g      core.SavingsGoal
		target sql.NullTime
		status string
	)
	err := row.Scan(&g.GoalID, &g.EntityID, &g.OrgID, &g.Name,
		&g.GoalAmount.Cents, &g.AmountSaved.Cents, &g.GoalType, &target, &status,
		&g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrGoalNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, storeErr("scan goal", err)
	}
	if target.Valid {
		t := target.Time
		g.TargetDate = &t
	}
	g.Status = core.GoalStatus(status)
	return g, nil
}

// GetGoal returns the goal only if it belongs to entityID; a goal owned by
// someone else is indistinguishable from a missing one.
func (r *SQLiteRepository) GetGoal(ctx context.Context, entityID, goalID uuid.UUID) (core.SavingsGoal, error) {
	return scanGoal(r.db.QueryRowContext(ctx,
		goalQuery+` WHERE goal_id = ? AND entity_id = ?`, goalID, entityID))
}

func getGoalTx(ctx context.Context, tx *sql.Tx, entityID, goalID uuid.UUID) (core.SavingsGoal, error) {
	return scanGoal(tx.QueryRowContext(ctx,
		goalQuery+` WHERE goal_id = ? AND entity_id = ?`, goalID, entityID))
}

// ListGoals returns the entity's goals, newest first.
func (r *SQLiteRepository) ListGoals(ctx context.Context, entityID uuid.UUID) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		goalQuery+` WHERE entity_id = ? ORDER BY created_at DESC, rowid DESC`, entityID)
	if err != nil {
		return nil, storeErr("list goals", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list goals", err)
	}
	return goals, nil
}

// AddGoalSavings moves amount from the wallet balance into the goal's saved
// amount. Goal savings are a sub-allocation of the wallet: the wallet is
// debited by the same amount in the same transaction, and a goal_allocation
// ledger entry mirrors the balance change. TotalSaved is untouched because no
// new money entered the system.
func (r *SQLiteRepository) AddGoalSavings(ctx context.Context, entityID, goalID uuid.UUID, amount core.Money) (core.SavingsGoal, core.Transaction, error) {
	var (
		goal  core.SavingsGoal
		entry core.Transaction
	)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		goal, err = getGoalTx(ctx, tx, entityID, goalID)
		if err != nil {
			return err
		}
		wallet, err := getWalletTx(ctx, tx, entityID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := debitWalletTx(ctx, tx, wallet, amount, now); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE savings_goals SET amount_saved_cents = amount_saved_cents + ?, updated_at = ? WHERE goal_id = ?`,
			amount.Cents, now, goal.GoalID)
		if err != nil {
			return storeErr("add goal savings", err)
		}

		entry, err = appendEntry(ctx, tx, wallet, core.TransactionGoalAllocation, amount,
			fmt.Sprintf("Savings for goal: %s", goal.Name), "")
		if err != nil {
			return err
		}

		goal.AmountSaved = goal.AmountSaved.Add(amount)
		goal.UpdatedAt = now
		return nil
	})
	if err != nil {
		return core.SavingsGoal{}, core.Transaction{}, err
	}
	return goal, entry, nil
}

// RecordExpense settles one expense across goal, wallet, ledger and expense
// records as a single atomic unit. The goal's savings are depleted first; any
// remainder comes out of the wallet and is mirrored by a withdrawal entry.
// The goal-funded portion deliberately leaves no ledger entry: it never
// touched the wallet balance.
func (r *SQLiteRepository) RecordExpense(ctx context.Context, entityID, orgID uuid.UUID, req core.ExpenseRequest) (core.Expense, core.DeductionBreakdown, error) {
	var (
		expense   core.Expense
		breakdown core.DeductionBreakdown
	)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		wallet, err := getWalletTx(ctx, tx, entityID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		goalDeduction := core.Money{}
		remaining := req.Amount
		var goalName string

		if req.GoalID != nil {
			goal, err := getGoalTx(ctx, tx, entityID, *req.GoalID)
			if err != nil {
				return err
			}
			goalName = goal.Name
			goalDeduction = goal.AmountSaved.Min(req.Amount)
			remaining = req.Amount.Sub(goalDeduction)
		}

		if !remaining.IsZero() && wallet.Balance.Cents < remaining.Cents {
			return &core.InsufficientFundsError{Need: remaining, Have: wallet.Balance}
		}

		if !goalDeduction.IsZero() {
			res, err := tx.ExecContext(ctx,
				`UPDATE savings_goals SET amount_saved_cents = amount_saved_cents - ?, updated_at = ?
				 WHERE goal_id = ? AND amount_saved_cents >= ?`,
				goalDeduction.Cents, now, *req.GoalID, goalDeduction.Cents)
			if err != nil {
				return storeErr("deduct goal savings", err)
			}
			if n, err := res.RowsAffected(); err != nil || n == 0 {
				return storeErr("deduct goal savings", fmt.Errorf("goal row changed underneath the settlement"))
			}
		}

		if !remaining.IsZero() {
			if err := debitWalletTx(ctx, tx, wallet, remaining, now); err != nil {
				return err
			}
		}

		expense = core.Expense{
			ExpenseID:   uuid.New(),
			EntityID:    entityID,
			OrgID:       orgID,
			GoalID:      req.GoalID,
			GoalName:    goalName,
			Amount:      req.Amount,
			Category:    req.Category,
			Description: req.Description,
			ExpenseDate: req.ExpenseDate,
			CreatedAt:   now,
		}

		var goalID any
		if req.GoalID != nil {
			goalID = *req.GoalID
		}
		var key any
		if req.IdempotencyKey != "" {
			key = req.IdempotencyKey
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (expense_id, entity_id, org_id, goal_id, amount_cents, expense_category, description, expense_date, idempotency_key, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ExpenseID, entityID, orgID, goalID, expense.Amount.Cents,
			expense.Category, expense.Description, expense.ExpenseDate.Format(dateLayout), key, now)
		if isUniqueViolation(err) {
			return core.ErrDuplicateOperation
		}
		if err != nil {
			return storeErr("insert expense", err)
		}

		if !remaining.IsZero() {
			desc := req.Description
			if desc == "" {
				desc = req.Category
			}
			if _, err := appendEntry(ctx, tx, wallet, core.TransactionWithdrawal, remaining,
				fmt.Sprintf("Expense: %s", desc), ""); err != nil {
				return err
			}
		}

		breakdown = core.DeductionBreakdown{
			FromGoal:   goalDeduction,
			FromWallet: remaining,
			Total:      req.Amount,
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, core.DeductionBreakdown{}, err
	}
	return expense, breakdown, nil
}

// ListTransactions returns the entity's ledger entries newest-first, plus the
// total count for pagination.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, entityID uuid.UUID, page core.Page) ([]core.Transaction, int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT transaction_id, wallet_id, entity_id, org_id, amount_cents, transaction_type, description, created_at
		 FROM transactions WHERE entity_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		entityID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, storeErr("list transactions", err)
	}
	defer rows.Close()

	var entries []core.Transaction
	for rows.Next() {
		var (
			e      core.Transaction
			txType string
		)
		if err := rows.Scan(&e.TransactionID, &e.WalletID, &e.EntityID, &e.OrgID,
			&e.Amount.Cents, &txType, &e.Description, &e.CreatedAt); err != nil {
			return nil, 0, storeErr("scan transaction", err)
		}
		e.Type = core.TransactionType(txType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list transactions", err)
	}

	var total int64
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE entity_id = ?`, entityID).Scan(&total)
	if err != nil {
		return nil, 0, storeErr("count transactions", err)
	}
	return entries, total, nil
}

// GetTransaction loads a single ledger entry by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, transactionID uuid.UUID) (core.Transaction, error) {
	var (
		e      core.Transaction
		txType string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT transaction_id, wallet_id, entity_id, org_id, amount_cents, transaction_type, description, created_at
		 FROM transactions WHERE transaction_id = ?`, transactionID).
		Scan(&e.TransactionID, &e.WalletID, &e.EntityID, &e.OrgID,
			&e.Amount.Cents, &txType, &e.Description, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", transactionID, sql.ErrNoRows)
	}
	if err != nil {
		return core.Transaction{}, storeErr("get transaction", err)
	}
	e.Type = core.TransactionType(txType)
	return e, nil
}

// GetExpense loads a single expense by id with the referenced goal's name
// joined in.
func (r *SQLiteRepository) GetExpense(ctx context.Context, expenseID uuid.UUID) (core.Expense, error) {
	var (
		e       core.Expense
		goalID  sql.NullString
		expDate string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT e.expense_id, e.entity_id, e.org_id, e.goal_id, COALESCE(sg.goal_name, ''), e.amount_cents, e.expense_category, e.description, e.expense_date, e.created_at
		 FROM expenses e
		 LEFT JOIN savings_goals sg ON e.goal_id = sg.goal_id
		 WHERE e.expense_id = ?`, expenseID).
		Scan(&e.ExpenseID, &e.EntityID, &e.OrgID, &goalID, &e.GoalName,
			&e.Amount.Cents, &e.Category, &e.Description, &expDate, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %s: %w", expenseID, sql.ErrNoRows)
	}
	if err != nil {
		return core.Expense{}, storeErr("get expense", err)
	}
	if goalID.Valid {
		id, err := uuid.Parse(goalID.String)
		if err != nil {
			return core.Expense{}, storeErr("parse goal id", err)
		}
		e.GoalID = &id
	}
	e.ExpenseDate, err = time.Parse(dateLayout, expDate)
	if err != nil {
		return core.Expense{}, storeErr("parse expense date", err)
	}
	return e, nil
}

// ListExpenses returns the entity's expenses newest-first with the referenced
// goal's name joined in, plus the total count.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, entityID uuid.UUID, page core.Page) ([]core.Expense, int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.expense_id, e.entity_id, e.org_id, e.goal_id, COALESCE(sg.goal_name, ''), e.amount_cents, e.expense_category, e.description, e.expense_date, e.created_at
		 FROM expenses e
		 LEFT JOIN savings_goals sg ON e.goal_id = sg.goal_id
		 WHERE e.entity_id = ?
		 ORDER BY e.expense_date DESC, e.created_at DESC, e.rowid DESC
		 LIMIT ? OFFSET ?`,
		entityID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, storeErr("list expenses", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			goalID  sql.NullString
			expDate string
		)
		if err := rows.Scan(&e.ExpenseID, &e.EntityID, &e.OrgID, &goalID, &e.GoalName,
			&e.Amount.Cents, &e.Category, &e.Description, &expDate, &e.CreatedAt); err != nil {
			return nil, 0, storeErr("scan expense", err)
		}
		if goalID.Valid {
			id, err := uuid.Parse(goalID.String)
			if err != nil {
				return nil, 0, storeErr("parse goal id", err)
			}
			e.GoalID = &id
		}
		e.ExpenseDate, err = time.Parse(dateLayout, expDate)
		if err != nil {
			return nil, 0, storeErr("parse expense date", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("list expenses", err)
	}

	var total int64
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE entity_id = ?`, entityID).Scan(&total)
	if err != nil {
		return nil, 0, storeErr("count expenses", err)
	}
	return expenses, total, nil
}

// ExpenseSummary aggregates the entity's spend per category over the
// inclusive date range, largest total first.
func (r *SQLiteRepository) ExpenseSummary(ctx context.Context, entityID uuid.UUID, start, end time.Time) (core.ExpenseSummary, error) {
	summary := core.ExpenseSummary{StartDate: start, EndDate: end}

	rows, err := r.db.QueryContext(ctx,
		`SELECT expense_category, COUNT(*), SUM(amount_cents)
		 FROM expenses
		 WHERE entity_id = ? AND expense_date BETWEEN ? AND ?
		 GROUP BY expense_category
		 ORDER BY SUM(amount_cents) DESC`,
		entityID, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return summary, storeErr("expense summary", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs core.CategorySummary
		if err := rows.Scan(&cs.Category, &cs.Count, &cs.Total.Cents); err != nil {
			return summary, storeErr("scan summary row", err)
		}
		summary.Categories = append(summary.Categories, cs)
	}
	if err := rows.Err(); err != nil {
		return summary, storeErr("expense summary", err)
	}
	return summary, nil
}
