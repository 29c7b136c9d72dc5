package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"stash/internal/core"
)

const (
	headerIdempotencyKey = "Idempotency-Key"

	dateLayout = "2006-01-02"
)

type walletResponse struct {
	WalletID   uuid.UUID `json:"wallet_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	OrgID      uuid.UUID `json:"org_id"`
	Balance    string    `json:"balance"`
	TotalSaved string    `json:"total_saved"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toWalletResponse(w core.Wallet) walletResponse {
	return walletResponse{
		WalletID:   w.WalletID,
		EntityID:   w.EntityID,
		OrgID:      w.OrgID,
		Balance:    w.Balance.String(),
		TotalSaved: w.TotalSaved.String(),
		Currency:   w.Currency,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

type transactionResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	WalletID      uuid.UUID `json:"wallet_id"`
	Amount        string    `json:"amount"`
	Type          string    `json:"transaction_type"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: t.TransactionID,
		WalletID:      t.WalletID,
		Amount:        t.Amount.String(),
		Type:          string(t.Type),
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

type goalResponse struct {
	GoalID      uuid.UUID `json:"goal_id"`
	Name        string    `json:"goal_name"`
	GoalAmount  string    `json:"goal_amount"`
	AmountSaved string    `json:"amount_saved"`
	GoalType    string    `json:"goal_type,omitempty"`
	TargetDate  *string   `json:"target_date,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	resp := goalResponse{
		GoalID:      g.GoalID,
		Name:        g.Name,
		GoalAmount:  g.GoalAmount.String(),
		AmountSaved: g.AmountSaved.String(),
		GoalType:    g.GoalType,
		Status:      string(g.Status),
		CreatedAt:   g.CreatedAt,
	}
	if g.TargetDate != nil {
		d := g.TargetDate.Format(dateLayout)
		resp.TargetDate = &d
	}
	return resp
}

type expenseResponse struct {
	ExpenseID   uuid.UUID  `json:"expense_id"`
	GoalID      *uuid.UUID `json:"goal_id,omitempty"`
	GoalName    string     `json:"goal_name,omitempty"`
	Amount      string     `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	ExpenseDate string     `json:"expense_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ExpenseID:   e.ExpenseID,
		GoalID:      e.GoalID,
		GoalName:    e.GoalName,
		Amount:      e.Amount.String(),
		Category:    e.Category,
		Description: e.Description,
		ExpenseDate: e.ExpenseDate.Format(dateLayout),
		CreatedAt:   e.CreatedAt,
	}
}

type breakdownResponse struct {
	FromGoal   string `json:"from_goal"`
	FromWallet string `json:"from_wallet"`
	Total      string `json:"total"`
}

func toBreakdownResponse(b core.DeductionBreakdown) breakdownResponse {
	return breakdownResponse{
		FromGoal:   b.FromGoal.String(),
		FromWallet: b.FromWallet.String(),
		Total:      b.Total.String(),
	}
}

type createAccountRequest struct {
	Role     string `json:"role"`
	Currency string `json:"currency"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}

	id := identityFrom(r.Context())
	wallet, err := s.wallets.CreateAccount(r.Context(), id.EntityID, id.OrgID, req.Role, req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWalletResponse(wallet))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	wallet, err := s.wallets.Wallet(r.Context(), id.EntityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletResponse(wallet))
}

type depositRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type mutationResponse struct {
	Wallet      walletResponse      `json:"wallet"`
	Transaction transactionResponse `json:"transaction"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	wallet, entry, err := s.wallets.Deposit(r.Context(), id.EntityID, core.DepositRequest{
		Amount:         amount,
		Description:    req.Description,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResponse{
		Wallet:      toWalletResponse(wallet),
		Transaction: toTransactionResponse(entry),
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	wallet, entry, err := s.wallets.Withdraw(r.Context(), id.EntityID, amount, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mutationResponse{
		Wallet:      toWalletResponse(wallet),
		Transaction: toTransactionResponse(entry),
	})
}

type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	entries, total, err := s.wallets.Transactions(r.Context(), id.EntityID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page = page.Normalize()
	resp := transactionListResponse{
		Transactions: make([]transactionResponse, 0, len(entries)),
		Total:        total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	for _, e := range entries {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createGoalRequest struct {
	Name       string `json:"goal_name"`
	GoalAmount string `json:"goal_amount"`
	GoalType   string `json:"goal_type"`
	TargetDate string `json:"target_date"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.GoalAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goalReq := core.GoalRequest{
		Name:       req.Name,
		GoalAmount: amount,
		GoalType:   req.GoalType,
	}
	if req.TargetDate != "" {
		d, err := time.Parse(dateLayout, req.TargetDate)
		if err != nil {
			writeErrorMessage(w, http.StatusUnprocessableEntity, "target_date must be YYYY-MM-DD")
			return
		}
		goalReq.TargetDate = &d
	}

	id := identityFrom(r.Context())
	goal, err := s.goals.Create(r.Context(), id.EntityID, id.OrgID, goalReq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	goals, err := s.goals.List(r.Context(), id.EntityID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		Goals []goalResponse `json:"goals"`
	}{Goals: make([]goalResponse, 0, len(goals))}
	for _, g := range goals {
		resp.Goals = append(resp.Goals, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	goalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	id := identityFrom(r.Context())
	goal, pct, err := s.goals.Progress(r.Context(), id.EntityID, goalID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		goalResponse
		ProgressPct string `json:"progress_pct"`
	}{goalResponse: toGoalResponse(goal), ProgressPct: pct.String()}
	writeJSON(w, http.StatusOK, resp)
}

type addSavingsRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleAddGoalSavings(w http.ResponseWriter, r *http.Request) {
	goalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req addSavingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	goal, entry, err := s.goals.AddSavings(r.Context(), id.EntityID, goalID, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		Goal        goalResponse        `json:"goal"`
		Transaction transactionResponse `json:"transaction"`
	}{Goal: toGoalResponse(goal), Transaction: toTransactionResponse(entry)}
	writeJSON(w, http.StatusCreated, resp)
}

type recordExpenseRequest struct {
	GoalID      string `json:"goal_id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ExpenseDate string `json:"expense_date"`
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req recordExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expReq := core.ExpenseRequest{
		Amount:         amount,
		Category:       req.Category,
		Description:    req.Description,
		IdempotencyKey: r.Header.Get(headerIdempotencyKey),
	}
	if req.GoalID != "" {
		goalID, err := uuid.Parse(req.GoalID)
		if err != nil {
			writeErrorMessage(w, http.StatusUnprocessableEntity, "goal_id must be a UUID")
			return
		}
		expReq.GoalID = &goalID
	}
	if req.ExpenseDate != "" {
		d, err := time.Parse(dateLayout, req.ExpenseDate)
		if err != nil {
			writeErrorMessage(w, http.StatusUnprocessableEntity, "expense_date must be YYYY-MM-DD")
			return
		}
		expReq.ExpenseDate = d
	}

	id := identityFrom(r.Context())
	expense, breakdown, err := s.settlements.Record(r.Context(), id.EntityID, id.OrgID, expReq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		Expense            expenseResponse   `json:"expense"`
		DeductionBreakdown breakdownResponse `json:"deduction_breakdown"`
	}{Expense: toExpenseResponse(expense), DeductionBreakdown: toBreakdownResponse(breakdown)}
	writeJSON(w, http.StatusCreated, resp)
}

type expenseListResponse struct {
	Expenses []expenseResponse `json:"expenses"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := identityFrom(r.Context())
	expenses, total, err := s.settlements.Expenses(r.Context(), id.EntityID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page = page.Normalize()
	resp := expenseListResponse{
		Expenses: make([]expenseResponse, 0, len(expenses)),
		Total:    total,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	StartDate  string                    `json:"start_date"`
	EndDate    string                    `json:"end_date"`
	Categories []categorySummaryResponse `json:"categories"`
}

type categorySummaryResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
	Total    string `json:"total"`
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start_date")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	id := identityFrom(r.Context())
	summary, err := s.settlements.Summary(r.Context(), id.EntityID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := summaryResponse{
		StartDate:  summary.StartDate.Format(dateLayout),
		EndDate:    summary.EndDate.Format(dateLayout),
		Categories: make([]categorySummaryResponse, 0, len(summary.Categories)),
	}
	for _, c := range summary.Categories {
		resp.Categories = append(resp.Categories, categorySummaryResponse{
			Category: c.Category,
			Count:    c.Count,
			Total:    c.Total.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
