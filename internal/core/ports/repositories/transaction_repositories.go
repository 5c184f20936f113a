package repositories

import (
	"context"
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindReversalOf retrieves the REVERSAL transaction pointing at originalID,
	// or apperrors.ErrNotFound when none exists.
	FindReversalOf(ctx context.Context, originalID string) (*domain.Transaction, error)

	// FindTransactionByIdempotencyKey retrieves a transaction previously committed
	// under the given caller-supplied key, or apperrors.ErrNotFound.
	FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)

	// SumAmountsInWindow sums the amounts of the account's outgoing transactions
	// of the given types with status COMPLETED or PROCESSING and
	// createdAt in [from, to).
	SumAmountsInWindow(ctx context.Context, accountID string, types []domain.TransactionType, from, to time.Time) (decimal.Decimal, error)

	// PendingOutgoing returns the total committed-but-unsettled outgoing value
	// (amount+fee of PENDING/PROCESSING transactions) and their count.
	PendingOutgoing(ctx context.Context, accountID string) (decimal.Decimal, int, error)

	// ListTransactionsByAccountID retrieves a paginated list of transactions
	// touching an account using token-based pagination.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines the atomic write units of the ledger.
type TransactionWriter interface {
	// SaveTransfer executes a validated transfer as one atomic unit: it inserts
	// the transaction row in PROCESSING, locks both account rows, applies the
	// conditional debit and the credit, records the fee when fee > 0, and flips
	// the row to COMPLETED. Any failure rolls the whole unit back.
	// Returns apperrors.ErrInsufficientFunds when the conditional debit fails.
	SaveTransfer(ctx context.Context, txn domain.Transaction) error

	// SaveReversal atomically creates the inverse transaction and flips the
	// original to REVERSED. The COMPLETED-status check and the double-reversal
	// check are re-evaluated inside the same unit, under a row lock on the
	// original transaction.
	SaveReversal(ctx context.Context, reversal domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
