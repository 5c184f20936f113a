package mapping

import (
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/finvault/ledgersvc/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:  d.TransactionID,
		FromAccountID:  d.FromAccountID,
		ToAccountID:    d.ToAccountID,
		Amount:         d.Amount,
		Fee:            d.Fee,
		Type:           string(d.Type),
		Status:         string(d.Status),
		Reference:      d.Reference,
		ReversalOf:     d.ReversalOf,
		IdempotencyKey: d.IdempotencyKey,
		ProcessingMs:   d.ProcessingTime.Milliseconds(),
		CompletedAt:    d.CompletedAt,
		FailedReason:   d.FailedReason,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:  m.TransactionID,
		FromAccountID:  m.FromAccountID,
		ToAccountID:    m.ToAccountID,
		Amount:         m.Amount,
		Fee:            m.Fee,
		Type:           domain.TransactionType(m.Type),
		Status:         domain.TransactionStatus(m.Status),
		Reference:      m.Reference,
		ReversalOf:     m.ReversalOf,
		IdempotencyKey: m.IdempotencyKey,
		ProcessingTime: time.Duration(m.ProcessingMs) * time.Millisecond,
		CompletedAt:    m.CompletedAt,
		FailedReason:   m.FailedReason,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
