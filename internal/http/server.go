package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stash/internal/core"
	"stash/internal/middleware/trace"
)

// WalletAPI is what the handlers need from the wallet service.
type WalletAPI interface {
	CreateAccount(ctx context.Context, entityID, orgID uuid.UUID, role, currency string) (core.Wallet, error)
	Wallet(ctx context.Context, entityID uuid.UUID) (core.Wallet, error)
	Deposit(ctx context.Context, entityID uuid.UUID, req core.DepositRequest) (core.Wallet, core.Transaction, error)
	Withdraw(ctx context.Context, entityID uuid.UUID, amount core.Money, description string) (core.Wallet, core.Transaction, error)
	Transactions(ctx context.Context, entityID uuid.UUID, page core.Page) ([]core.Transaction, int64, error)
}

// GoalAPI is what the handlers need from the goal service.
type GoalAPI interface {
	Create(ctx context.Context, entityID, orgID uuid.UUID, req core.GoalRequest) (core.SavingsGoal, error)
	List(ctx context.Context, entityID uuid.UUID) ([]core.SavingsGoal, error)
	Progress(ctx context.Context, entityID, goalID uuid.UUID) (core.SavingsGoal, decimal.Decimal, error)
	AddSavings(ctx context.Context, entityID, goalID uuid.UUID, amount core.Money) (core.SavingsGoal, core.Transaction, error)
}

// SettlementAPI is what the handlers need from the settlement service.
type SettlementAPI interface {
	Record(ctx context.Context, entityID, orgID uuid.UUID, req core.ExpenseRequest) (core.Expense, core.DeductionBreakdown, error)
	Expenses(ctx context.Context, entityID uuid.UUID, page core.Page) ([]core.Expense, int64, error)
	Summary(ctx context.Context, entityID uuid.UUID, start, end time.Time) (core.ExpenseSummary, error)
}

type Server struct {
	http.Server

	wallets         WalletAPI
	goals           GoalAPI
	settlements     SettlementAPI
	defaultCurrency string

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, wallets WalletAPI, goals GoalAPI, settlements SettlementAPI, defaultCurrency string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		wallets:         wallets,
		goals:           goals,
		settlements:     settlements,
		defaultCurrency: defaultCurrency,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /accounts", s.withIdentity(s.handleCreateAccount))
	mux.HandleFunc("GET /wallet", s.withIdentity(s.handleGetWallet))
	mux.HandleFunc("POST /wallet/deposits", s.withIdentity(s.handleDeposit))
	mux.HandleFunc("POST /wallet/withdrawals", s.withIdentity(s.handleWithdraw))
	mux.HandleFunc("GET /wallet/transactions", s.withIdentity(s.handleListTransactions))

	mux.HandleFunc("POST /goals", s.withIdentity(s.handleCreateGoal))
	mux.HandleFunc("GET /goals", s.withIdentity(s.handleListGoals))
	mux.HandleFunc("GET /goals/{id}/progress", s.withIdentity(s.handleGoalProgress))
	mux.HandleFunc("POST /goals/{id}/savings", s.withIdentity(s.handleAddGoalSavings))

	mux.HandleFunc("POST /expenses", s.withIdentity(s.handleRecordExpense))
	mux.HandleFunc("GET /expenses", s.withIdentity(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/summary", s.withIdentity(s.handleExpenseSummary))

	tracer := trace.NewMiddleware(clientIP)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(withSecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds baseline security headers to every response.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the caller's address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
