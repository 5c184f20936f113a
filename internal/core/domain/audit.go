package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditAction identifies the state-changing operation an audit entry records.
type AuditAction string

const (
	AuditTransactionComplete AuditAction = "TRANSACTION_COMPLETE"
	AuditTransactionFail     AuditAction = "TRANSACTION_FAIL"
	AuditTransactionReversed AuditAction = "TRANSACTION_REVERSED"
	AuditAccountCreated      AuditAction = "ACCOUNT_CREATED"
	AuditAccountDeactivated  AuditAction = "ACCOUNT_DEACTIVATED"
)

// AuditDetails is implemented by the known, typed audit payload shapes.
// Unstructured extras go into AuditEntry.Metadata instead.
type AuditDetails interface {
	AuditAction() AuditAction
}

// TransferCompletedDetails is the payload recorded for a committed transfer.
type TransferCompletedDetails struct {
	TransactionID string          `json:"transactionID"`
	FromAccountID string          `json:"fromAccountID"`
	ToAccountID   string          `json:"toAccountID"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Type          TransactionType `json:"type"`
}

func (TransferCompletedDetails) AuditAction() AuditAction { return AuditTransactionComplete }

// TransferFailedDetails is the payload recorded when processing rejects a transfer.
type TransferFailedDetails struct {
	FromAccountID string          `json:"fromAccountID"`
	ToAccountID   string          `json:"toAccountID"`
	Amount        decimal.Decimal `json:"amount"`
	Reasons       []string        `json:"reasons"`
}

func (TransferFailedDetails) AuditAction() AuditAction { return AuditTransactionFail }

// TransferReversedDetails is the payload recorded for an administrative reversal.
type TransferReversedDetails struct {
	OriginalTransactionID string          `json:"originalTransactionID"`
	ReversalTransactionID string          `json:"reversalTransactionID"`
	Amount                decimal.Decimal `json:"amount"`
	Reason                string          `json:"reason"`
}

func (TransferReversedDetails) AuditAction() AuditAction { return AuditTransactionReversed }

// AuditEntry is an immutable, append-only record of a state-changing operation.
// Writing one must never abort the operation that triggered it.
type AuditEntry struct {
	AuditID    string            `json:"auditID"` // Primary Key (UUID)
	UserID     *string           `json:"userID,omitempty"`
	Action     AuditAction       `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resourceID"`
	Details    AuditDetails      `json:"details,omitempty"`  // typed payload, serialized to JSONB
	Metadata   map[string]string `json:"metadata,omitempty"` // fallback for genuinely unstructured extras
	CreatedAt  time.Time         `json:"createdAt"`
}
