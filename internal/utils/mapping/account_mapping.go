package mapping

import (
	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/finvault/ledgersvc/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		OwnerID:           d.OwnerID,
		Balance:           d.Balance,
		CurrencyCode:      d.CurrencyCode,
		IsActive:          d.IsActive,
		DailyTransfer:     d.Limits.DailyTransfer,
		WeeklyTransfer:    d.Limits.WeeklyTransfer,
		MonthlyTransfer:   d.Limits.MonthlyTransfer,
		DailyWithdrawal:   d.Limits.DailyWithdrawal,
		WeeklyWithdrawal:  d.Limits.WeeklyWithdrawal,
		MonthlyWithdrawal: d.Limits.MonthlyWithdrawal,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		OwnerID:      m.OwnerID,
		Balance:      m.Balance,
		CurrencyCode: m.CurrencyCode,
		IsActive:     m.IsActive,
		Limits: domain.TransferLimits{
			DailyTransfer:     m.DailyTransfer,
			WeeklyTransfer:    m.WeeklyTransfer,
			MonthlyTransfer:   m.MonthlyTransfer,
			DailyWithdrawal:   m.DailyWithdrawal,
			WeeklyWithdrawal:  m.WeeklyWithdrawal,
			MonthlyWithdrawal: m.MonthlyWithdrawal,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
