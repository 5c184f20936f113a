package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines the scoped atomic unit primitives. Implementations
// commit or roll back a group of operations as a single all-or-nothing unit.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}
