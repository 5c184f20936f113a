package pgsql

import (
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool, accountRepo)
	userRepo := newPgxUserRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		UserRepo:        userRepo,
		AuditRepo:       auditRepo,
	}
}
