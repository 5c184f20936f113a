package repositories

import (
	"context"
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccountsByOwner retrieves all accounts owned by a user.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SetAccountActive flips the active flag on an account.
	SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside an atomic unit.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows for update
	// within a transaction. Callers must pass account IDs in deterministic order.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// AdjustBalanceInTx applies a signed balance delta within a transaction.
	// When minBalance is non-nil the update is conditional: it only applies if
	// balance+delta >= minBalance, and returns apperrors.ErrInsufficientFunds
	// when the condition fails. This is the authoritative overdraw guard.
	AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, minBalance *decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
