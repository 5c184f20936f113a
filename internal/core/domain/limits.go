package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitType is the dimension a limit applies to.
type LimitType string

const (
	LimitTransfer   LimitType = "TRANSFER"
	LimitWithdrawal LimitType = "WITHDRAWAL"
)

// LimitPeriod is the recurring window a limit is evaluated over.
type LimitPeriod string

const (
	PeriodDaily   LimitPeriod = "DAILY"
	PeriodWeekly  LimitPeriod = "WEEKLY"
	PeriodMonthly LimitPeriod = "MONTHLY"
)

// LimitStatus describes consumption of one (dimension, period) limit at a point in time.
type LimitStatus struct {
	LimitType       LimitType       `json:"limitType"`
	LimitPeriod     LimitPeriod     `json:"limitPeriod"`
	TotalLimit      decimal.Decimal `json:"totalLimit"`
	UsedAmount      decimal.Decimal `json:"usedAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"` // max(0, total - used)
	ResetAt         time.Time       `json:"resetAt"`         // next period boundary
}

// CountedTypes returns the transaction types aggregated under a limit dimension.
func (t LimitType) CountedTypes() []TransactionType {
	switch t {
	case LimitWithdrawal:
		return []TransactionType{TypeWithdrawal}
	default:
		return []TransactionType{TypeTransfer, TypeScheduled}
	}
}

// DimensionFor returns the limit dimensions applicable to a transaction type.
// Types not covered by any dimension return an empty slice.
func DimensionFor(txnType TransactionType) []LimitType {
	switch txnType {
	case TypeWithdrawal:
		return []LimitType{LimitWithdrawal}
	case TypeTransfer, TypeScheduled:
		return []LimitType{LimitTransfer}
	default:
		return nil
	}
}
