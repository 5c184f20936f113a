package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the business meaning of a ledger transaction.
type TransactionType string

const (
	TypeTransfer        TransactionType = "TRANSFER"
	TypeDeposit         TransactionType = "DEPOSIT"
	TypeWithdrawal      TransactionType = "WITHDRAWAL"
	TypeReversal        TransactionType = "REVERSAL"
	TypeFee             TransactionType = "FEE"
	TypeRefund          TransactionType = "REFUND"
	TypeScheduled       TransactionType = "SCHEDULED_PAYMENT"
	TypeInterestPayment TransactionType = "INTEREST_PAYMENT"
)

// TransactionStatus is the state-machine state of a transaction.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusFailed     TransactionStatus = "FAILED"
	StatusCancelled  TransactionStatus = "CANCELLED"
	StatusReversed   TransactionStatus = "REVERSED"
	StatusExpired    TransactionStatus = "EXPIRED"
)

// validTransitions encodes PENDING -> PROCESSING -> {COMPLETED | FAILED} and
// COMPLETED -> REVERSED. Everything else is terminal.
var validTransitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusExpired},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusReversed},
}

// CanTransition reports whether a status change is allowed by the state machine.
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from this status.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusFailed, StatusCancelled, StatusExpired, StatusReversed:
		return true
	}
	return false
}

// Transaction represents a single money movement between two accounts.
// Once COMPLETED it is immutable except for the one-time transition to REVERSED.
type Transaction struct {
	TransactionID  string            `json:"transactionID"` // Primary Key (UUID)
	FromAccountID  string            `json:"fromAccountID"` // FK -> accounts.account_id
	ToAccountID    string            `json:"toAccountID"`   // FK -> accounts.account_id
	Amount         decimal.Decimal   `json:"amount"`        // Positive value
	Fee            decimal.Decimal   `json:"fee"`           // >= 0; absorbed by the system, never credited to ToAccount
	Type           TransactionType   `json:"type"`
	Status         TransactionStatus `json:"status"`
	Reference      string            `json:"reference"`
	ReversalOf     *string           `json:"reversalOf,omitempty"`     // Set on REVERSAL transactions only
	IdempotencyKey *string           `json:"idempotencyKey,omitempty"` // Caller-supplied dedup token
	ProcessingTime time.Duration     `json:"processingTime"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
	FailedReason   string            `json:"failedReason,omitempty"`
	AuditFields
}
