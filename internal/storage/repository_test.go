package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"stash/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "stash.db"), 5*time.Second)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestAccount(t *testing.T, repo *SQLiteRepository) (uuid.UUID, core.Wallet) {
	t.Helper()
	entityID := uuid.New()
	wallet, err := repo.CreateAccount(context.Background(), entityID, uuid.New(), "member", "USD")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return entityID, wallet
}

func mustCredit(t *testing.T, repo *SQLiteRepository, entityID uuid.UUID, cents int64) core.Wallet {
	t.Helper()
	wallet, _, err := repo.CreditWallet(context.Background(), entityID,
		core.DepositRequest{Amount: core.Money{Cents: cents}, Description: "Savings deposit"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	return wallet
}

func TestCreateAccount(t *testing.T) {
	repo := newTestRepo(t)
	entityID, wallet := newTestAccount(t, repo)

	if wallet.Balance.Cents != 0 || wallet.TotalSaved.Cents != 0 {
		t.Fatalf("new wallet should start empty, got %+v", wallet)
	}

	got, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if got.WalletID != wallet.WalletID {
		t.Fatalf("expected wallet %s, got %s", wallet.WalletID, got.WalletID)
	}

	if _, err := repo.CreateAccount(context.Background(), entityID, uuid.New(), "member", "USD"); !errors.Is(err, core.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestGetWalletNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetWallet(context.Background(), uuid.New()); !errors.Is(err, core.ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}

// Scenario: empty wallet credited with 1000.00 ends with balance and
// total_saved at 1000.00 and exactly one deposit ledger entry of 1000.00.
func TestCreditWallet(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)

	wallet := mustCredit(t, repo, entityID, 100000)
	if wallet.Balance.Cents != 100000 {
		t.Fatalf("expected balance 100000, got %d", wallet.Balance.Cents)
	}
	if wallet.TotalSaved.Cents != 100000 {
		t.Fatalf("expected total_saved 100000, got %d", wallet.TotalSaved.Cents)
	}

	entries, total, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 20})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected one ledger entry, got %d (total %d)", len(entries), total)
	}
	if entries[0].Type != core.TransactionDeposit || entries[0].Amount.Cents != 100000 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestCreditWalletNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, _, err := repo.CreditWallet(context.Background(), uuid.New(),
		core.DepositRequest{Amount: core.Money{Cents: 100}})
	if !errors.Is(err, core.ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}
}

func TestDebitWallet(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 10000)

	wallet, entry, err := repo.DebitWallet(context.Background(), entityID, core.Money{Cents: 4000}, "cash out")
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if wallet.Balance.Cents != 6000 {
		t.Fatalf("expected balance 6000, got %d", wallet.Balance.Cents)
	}
	if wallet.TotalSaved.Cents != 10000 {
		t.Fatalf("total_saved must not decrease on debit, got %d", wallet.TotalSaved.Cents)
	}
	if entry.Type != core.TransactionWithdrawal || entry.Amount.Cents != 4000 {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
}

func TestDebitWalletInsufficientFunds(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 5000)

	_, _, err := repo.DebitWallet(context.Background(), entityID, core.Money{Cents: 5001}, "too much")
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	var ife *core.InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatalf("expected typed InsufficientFundsError, got %v", err)
	}
	if ife.Shortfall().Cents != 1 {
		t.Fatalf("expected shortfall 1, got %d", ife.Shortfall().Cents)
	}

	// A rejected debit leaves everything untouched: no balance change, no
	// ledger entry.
	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 5000 {
		t.Fatalf("balance changed on rejected debit: %d", wallet.Balance.Cents)
	}
	_, total, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 20})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected only the deposit entry, got %d", total)
	}
}

// Two concurrent debits that individually fit the balance but jointly exceed
// it: exactly one commits, the other fails with InsufficientFunds, and the
// final balance reflects only the winner.
func TestConcurrentDebits(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 10000)

	amounts := []int64{6000, 7000}
	errs := make([]error, len(amounts))
	var wg sync.WaitGroup
	for i, cents := range amounts {
		wg.Add(1)
		go func(i int, cents int64) {
			defer wg.Done()
			_, _, errs[i] = repo.DebitWallet(context.Background(), entityID, core.Money{Cents: cents}, "race")
		}(i, cents)
	}
	wg.Wait()

	var succeeded []int64
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded = append(succeeded, amounts[i])
		case errors.Is(err, core.ErrInsufficientFunds):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(succeeded) != 1 {
		t.Fatalf("expected exactly one debit to win, got %d", len(succeeded))
	}

	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if want := 10000 - succeeded[0]; wallet.Balance.Cents != want {
		t.Fatalf("expected balance %d, got %d", want, wallet.Balance.Cents)
	}
}

// Replay property: after an arbitrary sequence of credits and debits the
// balance equals sum(credits) - sum(accepted debits).
func TestBalanceReplay(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)

	credits := []int64{1000, 2500, 400}
	debits := []int64{300, 5000, 1200} // 5000 will be rejected mid-sequence

	var want int64
	for _, c := range credits {
		mustCredit(t, repo, entityID, c)
		want += c
	}
	for _, d := range debits {
		_, _, err := repo.DebitWallet(context.Background(), entityID, core.Money{Cents: d}, "replay")
		if err == nil {
			want -= d
		} else if !errors.Is(err, core.ErrInsufficientFunds) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != want {
		t.Fatalf("expected balance %d after replay, got %d", want, wallet.Balance.Cents)
	}
	if wallet.Balance.Cents < 0 {
		t.Fatalf("balance went negative: %d", wallet.Balance.Cents)
	}
}

func TestDepositIdempotencyKey(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)

	req := core.DepositRequest{
		Amount:         core.Money{Cents: 1000},
		Description:    "Savings deposit",
		IdempotencyKey: "dep-42",
	}
	if _, _, err := repo.CreditWallet(context.Background(), entityID, req); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	if _, _, err := repo.CreditWallet(context.Background(), entityID, req); !errors.Is(err, core.ErrDuplicateOperation) {
		t.Fatalf("expected ErrDuplicateOperation on replay, got %v", err)
	}

	// The replayed deposit must not have been applied.
	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 1000 {
		t.Fatalf("replay double-applied the deposit: %d", wallet.Balance.Cents)
	}
}

// Scenario: a goal starting empty reaches 300.00 saved after one allocation,
// with the wallet debited by the same amount and a goal_allocation entry in
// the ledger.
func TestAddGoalSavings(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 100000)

	goal, err := repo.CreateGoal(context.Background(), entityID, uuid.New(),
		core.GoalRequest{Name: "Surgery fund", GoalAmount: core.Money{Cents: 50000}, GoalType: "health"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	goal, entry, err := repo.AddGoalSavings(context.Background(), entityID, goal.GoalID, core.Money{Cents: 30000})
	if err != nil {
		t.Fatalf("add savings: %v", err)
	}
	if goal.AmountSaved.Cents != 30000 {
		t.Fatalf("expected amount_saved 30000, got %d", goal.AmountSaved.Cents)
	}
	if entry.Type != core.TransactionGoalAllocation || entry.Amount.Cents != 30000 {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}

	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 70000 {
		t.Fatalf("allocation should debit the wallet, balance %d", wallet.Balance.Cents)
	}
	if wallet.TotalSaved.Cents != 100000 {
		t.Fatalf("allocation must not change total_saved, got %d", wallet.TotalSaved.Cents)
	}
}

func TestAddGoalSavingsErrors(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 1000)

	goal, err := repo.CreateGoal(context.Background(), entityID, uuid.New(),
		core.GoalRequest{Name: "Bike", GoalAmount: core.Money{Cents: 50000}})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	// Unknown goal id.
	if _, _, err := repo.AddGoalSavings(context.Background(), entityID, uuid.New(), core.Money{Cents: 100}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}

	// A goal owned by someone else looks like a missing goal.
	otherEntity, _ := newTestAccount(t, repo)
	if _, _, err := repo.AddGoalSavings(context.Background(), otherEntity, goal.GoalID, core.Money{Cents: 100}); !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound for foreign goal, got %v", err)
	}

	// Allocation beyond the wallet balance is rejected and nothing moves.
	if _, _, err := repo.AddGoalSavings(context.Background(), entityID, goal.GoalID, core.Money{Cents: 2000}); !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	got, err := repo.GetGoal(context.Background(), entityID, goal.GoalID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.AmountSaved.Cents != 0 {
		t.Fatalf("rejected allocation mutated the goal: %d", got.AmountSaved.Cents)
	}
}

func TestListGoalsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		if _, err := repo.CreateGoal(context.Background(), entityID, uuid.New(),
			core.GoalRequest{Name: name, GoalAmount: core.Money{Cents: 1000}}); err != nil {
			t.Fatalf("create goal %s: %v", name, err)
		}
	}

	goals, err := repo.ListGoals(context.Background(), entityID)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 3 {
		t.Fatalf("expected 3 goals, got %d", len(goals))
	}
	if goals[0].Name != "Third" || goals[2].Name != "First" {
		t.Fatalf("goals not newest-first: %s, %s, %s", goals[0].Name, goals[1].Name, goals[2].Name)
	}
}

// Scenario: wallet 200.00, goal saved 150.00, expense of 300.00 against the
// goal. The goal is drained first (150.00), the wallet covers the remaining
// 150.00, exactly one withdrawal entry of 150.00 is appended, and the expense
// row carries the full 300.00.
func TestRecordExpenseSplitsAcrossGoalAndWallet(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 35000)

	goal, err := repo.CreateGoal(context.Background(), entityID, uuid.New(),
		core.GoalRequest{Name: "Checkup", GoalAmount: core.Money{Cents: 50000}, GoalType: "health"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, _, err := repo.AddGoalSavings(context.Background(), entityID, goal.GoalID, core.Money{Cents: 15000}); err != nil {
		t.Fatalf("add savings: %v", err)
	}
	// Wallet is now at 200.00, goal at 150.00.

	expense, breakdown, err := repo.RecordExpense(context.Background(), entityID, uuid.New(),
		core.ExpenseRequest{
			GoalID:      &goal.GoalID,
			Amount:      core.Money{Cents: 30000},
			Category:    "medical",
			Description: "clinic visit",
			ExpenseDate: time.Now().UTC(),
		})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}

	if breakdown.FromGoal.Cents != 15000 || breakdown.FromWallet.Cents != 15000 || breakdown.Total.Cents != 30000 {
		t.Fatalf("unexpected breakdown: %+v", breakdown)
	}
	if breakdown.FromGoal.Cents+breakdown.FromWallet.Cents != expense.Amount.Cents {
		t.Fatalf("breakdown does not add up to the expense amount")
	}

	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 5000 {
		t.Fatalf("expected balance 5000, got %d", wallet.Balance.Cents)
	}

	got, err := repo.GetGoal(context.Background(), entityID, goal.GoalID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.AmountSaved.Cents != 0 {
		t.Fatalf("expected goal drained, got %d", got.AmountSaved.Cents)
	}

	// Ledger: deposit, goal_allocation, and one withdrawal of 150.00 for the
	// wallet-funded portion only.
	entries, _, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 20})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	var withdrawals []core.Transaction
	for _, e := range entries {
		if e.Type == core.TransactionWithdrawal {
			withdrawals = append(withdrawals, e)
		}
	}
	if len(withdrawals) != 1 || withdrawals[0].Amount.Cents != 15000 {
		t.Fatalf("expected one withdrawal of 15000, got %+v", withdrawals)
	}
}

func TestRecordExpenseGoalCoversAll(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 50000)

	goal, err := repo.CreateGoal(context.Background(), entityID, uuid.New(),
		core.GoalRequest{Name: "Dental", GoalAmount: core.Money{Cents: 40000}})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, _, err := repo.AddGoalSavings(context.Background(), entityID, goal.GoalID, core.Money{Cents: 40000}); err != nil {
		t.Fatalf("add savings: %v", err)
	}

	_, breakdown, err := repo.RecordExpense(context.Background(), entityID, uuid.New(),
		core.ExpenseRequest{
			GoalID:      &goal.GoalID,
			Amount:      core.Money{Cents: 25000},
			Category:    "medical",
			ExpenseDate: time.Now().UTC(),
		})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if breakdown.FromGoal.Cents != 25000 || breakdown.FromWallet.Cents != 0 {
		t.Fatalf("unexpected breakdown: %+v", breakdown)
	}

	// Fully goal-funded: wallet untouched, no withdrawal entry.
	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 10000 {
		t.Fatalf("expected balance 10000, got %d", wallet.Balance.Cents)
	}
	entries, _, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 20})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	for _, e := range entries {
		if e.Type == core.TransactionWithdrawal {
			t.Fatalf("no withdrawal expected for a fully goal-funded expense: %+v", e)
		}
	}
}

// Scenario: wallet 100.00, no goal, expense of 150.00 fails with a 50.00
// shortfall and nothing is written.
func TestRecordExpenseInsufficientFunds(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 10000)

	_, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(),
		core.ExpenseRequest{
			Amount:      core.Money{Cents: 15000},
			Category:    "groceries",
			ExpenseDate: time.Now().UTC(),
		})
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	var ife *core.InsufficientFundsError
	if !errors.As(err, &ife) || ife.Shortfall().Cents != 5000 {
		t.Fatalf("expected shortfall 5000, got %v", err)
	}

	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 10000 {
		t.Fatalf("rejected expense mutated the wallet: %d", wallet.Balance.Cents)
	}
	_, total, err := repo.ListExpenses(context.Background(), entityID, core.Page{Limit: 20})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if total != 0 {
		t.Fatalf("rejected expense left a row behind")
	}
}

func TestRecordExpenseGoalNotFound(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 10000)

	missing := uuid.New()
	_, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(),
		core.ExpenseRequest{
			GoalID:      &missing,
			Amount:      core.Money{Cents: 100},
			Category:    "misc",
			ExpenseDate: time.Now().UTC(),
		})
	if !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestRecordExpenseIdempotencyKey(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 10000)

	req := core.ExpenseRequest{
		Amount:         core.Money{Cents: 2000},
		Category:       "groceries",
		ExpenseDate:    time.Now().UTC(),
		IdempotencyKey: "exp-7",
	}
	if _, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(), req); err != nil {
		t.Fatalf("first expense: %v", err)
	}
	if _, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(), req); !errors.Is(err, core.ErrDuplicateOperation) {
		t.Fatalf("expected ErrDuplicateOperation on replay, got %v", err)
	}

	wallet, err := repo.GetWallet(context.Background(), entityID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if wallet.Balance.Cents != 8000 {
		t.Fatalf("replay double-applied the expense: %d", wallet.Balance.Cents)
	}
}

func TestListTransactionsPagination(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)

	for i := 0; i < 5; i++ {
		mustCredit(t, repo, entityID, int64(100*(i+1)))
	}

	page1, total, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("expected total 5 and 2 rows, got %d/%d", total, len(page1))
	}
	// Newest first: the last deposit (500) leads.
	if page1[0].Amount.Cents != 500 {
		t.Fatalf("expected newest entry first, got %d", page1[0].Amount.Cents)
	}

	page3, _, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page3) != 1 || page3[0].Amount.Cents != 100 {
		t.Fatalf("expected oldest entry alone on the last page, got %+v", page3)
	}

	// Reads are idempotent: the same query returns the same ordered result.
	again, _, err := repo.ListTransactions(context.Background(), entityID, core.Page{Limit: 2})
	if err != nil {
		t.Fatalf("repeat read: %v", err)
	}
	for i := range page1 {
		if again[i].TransactionID != page1[i].TransactionID {
			t.Fatalf("history order changed between identical reads")
		}
	}
}

func TestListExpensesJoinsGoalName(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 100000)

	goal, err := repo.CreateGoal(context.Background(), entityID, uuid.New(),
		core.GoalRequest{Name: "Trip", GoalAmount: core.Money{Cents: 80000}})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	if _, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(), core.ExpenseRequest{
		GoalID:      &goal.GoalID,
		Amount:      core.Money{Cents: 3000},
		Category:    "travel",
		ExpenseDate: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("goal expense: %v", err)
	}
	if _, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(), core.ExpenseRequest{
		Amount:      core.Money{Cents: 1500},
		Category:    "groceries",
		ExpenseDate: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("plain expense: %v", err)
	}

	expenses, total, err := repo.ListExpenses(context.Background(), entityID, core.Page{Limit: 20})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if total != 2 || len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d (total %d)", len(expenses), total)
	}
	for _, e := range expenses {
		if e.GoalID != nil && e.GoalName != "Trip" {
			t.Fatalf("goal name not joined: %+v", e)
		}
		if e.GoalID == nil && e.GoalName != "" {
			t.Fatalf("unexpected goal name on plain expense: %+v", e)
		}
	}
}

func TestExpenseSummary(t *testing.T) {
	repo := newTestRepo(t)
	entityID, _ := newTestAccount(t, repo)
	mustCredit(t, repo, entityID, 100000)

	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	spend := []struct {
		category string
		cents    int64
	}{
		{"groceries", 2000},
		{"groceries", 3000},
		{"transport", 1000},
	}
	for _, s := range spend {
		if _, _, err := repo.RecordExpense(context.Background(), entityID, uuid.New(), core.ExpenseRequest{
			Amount:      core.Money{Cents: s.cents},
			Category:    s.category,
			ExpenseDate: day,
		}); err != nil {
			t.Fatalf("expense %s: %v", s.category, err)
		}
	}

	summary, err := repo.ExpenseSummary(context.Background(), entityID,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summary.Categories))
	}
	if summary.Categories[0].Category != "groceries" || summary.Categories[0].Total.Cents != 5000 || summary.Categories[0].Count != 2 {
		t.Fatalf("unexpected leading category: %+v", summary.Categories[0])
	}

	// Out-of-range dates return nothing.
	empty, err := repo.ExpenseSummary(context.Background(), entityID,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("empty summary: %v", err)
	}
	if len(empty.Categories) != 0 {
		t.Fatalf("expected no categories, got %+v", empty.Categories)
	}
}
