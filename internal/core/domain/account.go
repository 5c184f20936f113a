package domain

import (
	"github.com/shopspring/decimal"
)

// TransferLimits holds the per-period caps configured for an account.
// A zero value for any cap means that cap is not configured and is not enforced.
type TransferLimits struct {
	DailyTransfer     decimal.Decimal `json:"dailyTransferLimit"`
	WeeklyTransfer    decimal.Decimal `json:"weeklyTransferLimit"`
	MonthlyTransfer   decimal.Decimal `json:"monthlyTransferLimit"`
	DailyWithdrawal   decimal.Decimal `json:"dailyWithdrawalLimit"`
	WeeklyWithdrawal  decimal.Decimal `json:"weeklyWithdrawalLimit"`
	MonthlyWithdrawal decimal.Decimal `json:"monthlyWithdrawalLimit"`
}

// Account represents a balance-carrying account within the core domain.
// Balance is mutated exclusively by the ledger processor and the reversal
// engine; it is never negative.
type Account struct {
	AccountID    string          `json:"accountID"` // Primary Key (UUID)
	OwnerID      string          `json:"ownerID"`   // FK -> users.user_id (NON-NULL)
	Balance      decimal.Decimal `json:"balance"`
	CurrencyCode string          `json:"currencyCode"`
	IsActive     bool            `json:"isActive"`
	Limits       TransferLimits  `json:"limits"`
	AuditFields
}
