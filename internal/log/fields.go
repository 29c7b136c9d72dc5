package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldEntityID    = "entity_id"
	FieldOrgID       = "org_id"
	FieldWalletID    = "wallet_id"
	FieldGoalID      = "goal_id"
	FieldExpenseID   = "expense_id"
	FieldTxID        = "transaction_id"
	FieldTxType      = "transaction_type"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "expense_category"
	FieldBalance     = "balance_cents"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentWallet     = "wallet"
	ComponentGoal       = "goal"
	ComponentSettlement = "settlement"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentNotify     = "notify"
)

// Operations defines standard operation names.
const (
	OpCredit   = "credit"
	OpDebit    = "debit"
	OpCreate   = "create"
	OpAllocate = "allocate"
	OpSettle   = "settle"
	OpList     = "list"
	OpAppend   = "append"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
