package dto

import (
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest defines the data needed to move money between two accounts.
type TransferRequest struct {
	FromAccountID  string                 `json:"fromAccountID" binding:"required"`
	ToAccountID    string                 `json:"toAccountID" binding:"required"`
	Amount         decimal.Decimal        `json:"amount" binding:"required"`
	Type           domain.TransactionType `json:"type" binding:"omitempty,txn_type"`
	Reference      string                 `json:"reference"`
	IdempotencyKey *string                `json:"idempotencyKey"` // Optional dedup token for client retries
}

// NormalizedType returns the request type, defaulting to TRANSFER.
func (r TransferRequest) NormalizedType() domain.TransactionType {
	if r.Type == "" {
		return domain.TypeTransfer
	}
	return r.Type
}

// ValidationResult is the outcome of a pre-flight transfer validation.
// Validation at request time is advisory; processing re-runs it authoritatively.
type ValidationResult struct {
	IsValid      bool                 `json:"isValid"`
	Errors       []string             `json:"errors"`
	Warnings     []string             `json:"warnings"`
	EstimatedFee decimal.Decimal      `json:"estimatedFee"`
	Limits       []domain.LimitStatus `json:"limits"`
}

// ReverseRequest carries the administrative reason for a reversal.
type ReverseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID  string                   `json:"transactionID"`
	FromAccountID  string                   `json:"fromAccountID"`
	ToAccountID    string                   `json:"toAccountID"`
	Amount         decimal.Decimal          `json:"amount"`
	Fee            decimal.Decimal          `json:"fee"`
	Type           domain.TransactionType   `json:"type"`
	Status         domain.TransactionStatus `json:"status"`
	Reference      string                   `json:"reference"`
	ReversalOf     *string                  `json:"reversalOf,omitempty"`
	ProcessingMs   int64                    `json:"processingMs"`
	CompletedAt    *time.Time               `json:"completedAt,omitempty"`
	FailedReason   string                   `json:"failedReason,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
	CreatedBy      string                   `json:"createdBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Fee:           t.Fee,
		Type:          t.Type,
		Status:        t.Status,
		Reference:     t.Reference,
		ReversalOf:    t.ReversalOf,
		ProcessingMs:  t.ProcessingTime.Milliseconds(),
		CompletedAt:   t.CompletedAt,
		FailedReason:  t.FailedReason,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(ts []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(ts))
	for i := range ts {
		res[i] = ToTransactionResponse(&ts[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for listing account transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions plus the continuation token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
