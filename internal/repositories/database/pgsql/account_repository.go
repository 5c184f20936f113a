package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/finvault/ledgersvc/internal/apperrors"
	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	"github.com/finvault/ledgersvc/internal/models"
	"github.com/finvault/ledgersvc/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, owner_id, balance, currency_code, is_active,
	daily_transfer_limit, weekly_transfer_limit, monthly_transfer_limit,
	daily_withdrawal_limit, weekly_withdrawal_limit, monthly_withdrawal_limit,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.OwnerID,
		&m.Balance,
		&m.CurrencyCode,
		&m.IsActive,
		&m.DailyTransfer,
		&m.WeeklyTransfer,
		&m.MonthlyTransfer,
		&m.DailyWithdrawal,
		&m.WeeklyWithdrawal,
		&m.MonthlyWithdrawal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.OwnerID,
		m.Balance,
		m.CurrencyCode,
		m.IsActive,
		m.DailyTransfer,
		m.WeeklyTransfer,
		m.MonthlyTransfer,
		m.DailyWithdrawal,
		m.WeeklyWithdrawal,
		m.MonthlyWithdrawal,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
// IDs with no matching row are simply absent from the result map; the caller
// decides whether that is an error.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	return accountsMap, nil
}

// ListAccountsByOwner retrieves all accounts owned by a user, oldest first.
func (r *PgxAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at, account_id;`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for owner %s: %w", ownerID, err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows for owner %s: %w", ownerID, err)
	}

	return accounts, nil
}

// SetAccountActive flips the active flag on an account.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query, accountID, active, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update active flag for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the
// rows for update. Must be called within a transaction. Rows are locked in
// account_id order so concurrent transfers touching the same accounts cannot
// deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	sorted := make([]string, len(accountIDs))
	copy(sorted, accountIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	return accountsMap, nil
}

// AdjustBalanceInTx applies a signed balance delta within a transaction. When
// minBalance is non-nil the update only applies if the resulting balance stays
// at or above it; a failed condition surfaces as ErrInsufficientFunds. This is
// the authoritative overdraw guard, independent of any pre-flight check.
func (r *PgxAccountRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, minBalance *decimal.Decimal, userID string, now time.Time) error {
	var cmdTag pgconn.CommandTag
	var err error

	if minBalance != nil {
		query := `
			UPDATE accounts
			SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1 AND balance + $2 >= $5;
		`
		cmdTag, err = tx.Exec(ctx, query, accountID, delta, now, userID, *minBalance)
	} else {
		query := `
			UPDATE accounts
			SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1;
		`
		cmdTag, err = tx.Exec(ctx, query, accountID, delta, now, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to adjust balance for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if minBalance != nil {
			return fmt.Errorf("%w: account %s cannot cover %s", apperrors.ErrInsufficientFunds, accountID, delta.Neg())
		}
		return apperrors.ErrNotFound
	}
	return nil
}
