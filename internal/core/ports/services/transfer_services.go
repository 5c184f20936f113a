package services

import (
	"context"

	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/finvault/ledgersvc/internal/dto"
	"github.com/shopspring/decimal"
)

// FeeSvcFacade computes fees for proposed transfers. Implementations are pure.
type FeeSvcFacade interface {
	// EstimateFee returns the fee for a transfer of amount with the given type,
	// rounded half-up to 2 decimal places.
	EstimateFee(amount decimal.Decimal, txnType domain.TransactionType) decimal.Decimal
}

// LimitSvcFacade computes rolling-window limit consumption for an account.
type LimitSvcFacade interface {
	// LimitStatuses returns one status per configured (dimension x period) pair
	// applicable to the requested transaction type.
	LimitStatuses(ctx context.Context, account domain.Account, txnType domain.TransactionType) ([]domain.LimitStatus, error)
}

// TransferSvcFacade is the core contract consumed by the API layer.
type TransferSvcFacade interface {
	// ValidateTransfer runs the read-only pre-flight validation, accumulating
	// all applicable errors and warnings. Safe to repeat.
	ValidateTransfer(ctx context.Context, req dto.TransferRequest, userID string) (*dto.ValidationResult, error)

	// ProcessTransfer re-validates authoritatively and executes the transfer as
	// one atomic unit. Never retried internally.
	ProcessTransfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.Transaction, error)

	// GetTransactionByID retrieves a single transaction.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ReverseTransaction creates the inverse transaction for a completed
	// transfer and restores balances. Requires administrative privilege.
	ReverseTransaction(ctx context.Context, transactionID, reason, adminUserID string) (*domain.Transaction, error)

	// GetAccountBalance returns balance, available balance and pending count.
	// Callers must own the account or hold the admin role.
	GetAccountBalance(ctx context.Context, accountID, userID string) (*dto.AccountBalanceResponse, error)

	// ListAccountTransactions returns a page of transactions touching the account.
	ListAccountTransactions(ctx context.Context, accountID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// AuditSvcFacade records state-changing operations. Recording is best-effort:
// failures are logged, never surfaced to the triggering operation.
type AuditSvcFacade interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

// AccountSvcFacade covers account provisioning. Balance mutation is NOT part of
// this facade; only the ledger processor and reversal engine touch balances.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, ownerUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, ownerUserID string) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, accountID string, requestingUserID string) error
}

// UserSvcFacade covers minimal user provisioning and lookup.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
