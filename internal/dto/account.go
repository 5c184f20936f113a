package dto

import (
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	CurrencyCode      string          `json:"currencyCode" binding:"required,len=3"`
	InitialBalance    decimal.Decimal `json:"initialBalance"`
	DailyTransfer     decimal.Decimal `json:"dailyTransferLimit"`
	WeeklyTransfer    decimal.Decimal `json:"weeklyTransferLimit"`
	MonthlyTransfer   decimal.Decimal `json:"monthlyTransferLimit"`
	DailyWithdrawal   decimal.Decimal `json:"dailyWithdrawalLimit"`
	WeeklyWithdrawal  decimal.Decimal `json:"weeklyWithdrawalLimit"`
	MonthlyWithdrawal decimal.Decimal `json:"monthlyWithdrawalLimit"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string                `json:"accountID"`
	OwnerID       string                `json:"ownerID"`
	Balance       decimal.Decimal       `json:"balance"`
	CurrencyCode  string                `json:"currencyCode"`
	IsActive      bool                  `json:"isActive"`
	Limits        domain.TransferLimits `json:"limits"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastUpdatedAt time.Time             `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		OwnerID:       acc.OwnerID,
		Balance:       acc.Balance,
		CurrencyCode:  acc.CurrencyCode,
		IsActive:      acc.IsActive,
		Limits:        acc.Limits,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// AccountBalanceResponse defines the data returned for a balance query.
// AvailableBalance is the persisted balance minus the account's own pending
// outgoing value (amount+fee of PENDING/PROCESSING transactions).
type AccountBalanceResponse struct {
	AccountID               string          `json:"accountID"`
	Balance                 decimal.Decimal `json:"balance"`
	AvailableBalance        decimal.Decimal `json:"availableBalance"`
	PendingTransactionCount int             `json:"pendingTransactionCount"`
}
