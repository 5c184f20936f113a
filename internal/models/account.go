package models

import (
	"github.com/shopspring/decimal"
)

// Account represents an account row. Balance is the persisted, authoritative
// balance; it is only ever mutated inside a ledger transaction.
type Account struct {
	AccountID         string          `db:"account_id"`
	OwnerID           string          `db:"owner_id"`
	Balance           decimal.Decimal `db:"balance"`
	CurrencyCode      string          `db:"currency_code"`
	IsActive          bool            `db:"is_active"`
	DailyTransfer     decimal.Decimal `db:"daily_transfer_limit"` // 0 means unconfigured
	WeeklyTransfer    decimal.Decimal `db:"weekly_transfer_limit"`
	MonthlyTransfer   decimal.Decimal `db:"monthly_transfer_limit"`
	DailyWithdrawal   decimal.Decimal `db:"daily_withdrawal_limit"`
	WeeklyWithdrawal  decimal.Decimal `db:"weekly_withdrawal_limit"`
	MonthlyWithdrawal decimal.Decimal `db:"monthly_withdrawal_limit"`
	AuditFields
}
