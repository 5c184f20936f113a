package services

import (
	"context"
	"fmt"
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

var allPeriods = []domain.LimitPeriod{domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly}

// limitService computes rolling-window limit consumption for an account.
// Window sums come from the transaction repository; the clock is injected so
// period boundaries are deterministic under test.
type limitService struct {
	txnRepo portsrepo.TransactionReader
	clock   portssvc.Clock
}

// NewLimitService creates a new limit enforcer.
func NewLimitService(txnRepo portsrepo.TransactionReader, clock portssvc.Clock) portssvc.LimitSvcFacade {
	return &limitService{txnRepo: txnRepo, clock: clock}
}

var _ portssvc.LimitSvcFacade = (*limitService)(nil)

// LimitStatuses returns one status per configured (dimension x period) pair
// applicable to txnType. Unconfigured (zero) limits are skipped; a transaction
// type covered by no dimension yields an empty slice.
func (s *limitService) LimitStatuses(ctx context.Context, account domain.Account, txnType domain.TransactionType) ([]domain.LimitStatus, error) {
	now := s.clock.Now().UTC()

	statuses := []domain.LimitStatus{}
	for _, dim := range domain.DimensionFor(txnType) {
		for _, period := range allPeriods {
			total := limitFor(account.Limits, dim, period)
			if !total.IsPositive() {
				continue
			}

			start := PeriodStart(period, now)
			used, err := s.txnRepo.SumAmountsInWindow(ctx, account.AccountID, dim.CountedTypes(), start, now)
			if err != nil {
				return nil, fmt.Errorf("failed to sum %s/%s window for account %s: %w", dim, period, account.AccountID, err)
			}

			remaining := total.Sub(used)
			if remaining.IsNegative() {
				// Concurrent overshoot can push usage past the cap; remaining is
				// clamped so it never reads negative.
				remaining = decimal.Zero
			}

			statuses = append(statuses, domain.LimitStatus{
				LimitType:       dim,
				LimitPeriod:     period,
				TotalLimit:      total,
				UsedAmount:      used,
				RemainingAmount: remaining,
				ResetAt:         NextReset(period, now),
			})
		}
	}
	return statuses, nil
}

func limitFor(limits domain.TransferLimits, dim domain.LimitType, period domain.LimitPeriod) decimal.Decimal {
	switch dim {
	case domain.LimitWithdrawal:
		switch period {
		case domain.PeriodDaily:
			return limits.DailyWithdrawal
		case domain.PeriodWeekly:
			return limits.WeeklyWithdrawal
		default:
			return limits.MonthlyWithdrawal
		}
	default:
		switch period {
		case domain.PeriodDaily:
			return limits.DailyTransfer
		case domain.PeriodWeekly:
			return limits.WeeklyTransfer
		default:
			return limits.MonthlyTransfer
		}
	}
}

// PeriodStart returns the UTC anchor of the window containing now:
// midnight for daily, the most recent Monday 00:00 for weekly (ISO week),
// the first of the month for monthly.
func PeriodStart(period domain.LimitPeriod, now time.Time) time.Time {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case domain.PeriodDaily:
		return midnight
	case domain.PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // ISO: Sunday is day 7
		}
		return midnight.AddDate(0, 0, -(weekday - 1))
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// NextReset returns the next period boundary after now.
func NextReset(period domain.LimitPeriod, now time.Time) time.Time {
	start := PeriodStart(period, now)
	switch period {
	case domain.PeriodDaily:
		return start.AddDate(0, 0, 1)
	case domain.PeriodWeekly:
		return start.AddDate(0, 0, 7)
	default:
		return start.AddDate(0, 1, 0)
	}
}
