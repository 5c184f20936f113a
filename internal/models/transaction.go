package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a transaction row: one logical movement of money
// between two accounts, including its fee and lifecycle status.
type Transaction struct {
	TransactionID  string          `db:"transaction_id"`
	FromAccountID  string          `db:"from_account_id"`
	ToAccountID    string          `db:"to_account_id"`
	Amount         decimal.Decimal `db:"amount"` // Positive value; precise decimal type
	Fee            decimal.Decimal `db:"fee"`
	Type           string          `db:"txn_type"`
	Status         string          `db:"status"`
	Reference      string          `db:"reference"`
	ReversalOf     *string         `db:"reversal_of"`     // Nullable FK -> transactions.transaction_id
	IdempotencyKey *string         `db:"idempotency_key"` // Nullable, unique when present
	ProcessingMs   int64           `db:"processing_ms"`
	CompletedAt    *time.Time      `db:"completed_at"`
	FailedReason   string          `db:"failed_reason"`
	AuditFields
}

// TransactionFee represents a fee ledger row, written alongside the transfer
// whenever a nonzero fee was charged.
type TransactionFee struct {
	FeeID         string          `db:"fee_id"`
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"` // account that paid the fee
	Amount        decimal.Decimal `db:"amount"`
	CreatedAt     time.Time       `db:"created_at"`
}
