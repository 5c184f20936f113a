package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finvault/ledgersvc/internal/apperrors"
	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	"github.com/finvault/ledgersvc/internal/models"
	"github.com/finvault/ledgersvc/internal/utils/mapping"
	"github.com/finvault/ledgersvc/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

const transactionColumns = `transaction_id, from_account_id, to_account_id, amount, fee,
	txn_type, status, reference, reversal_of, idempotency_key, processing_ms,
	completed_at, failed_reason, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for transaction data.
// The account repository is needed for the row locks and balance adjustments
// performed inside the atomic write units.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.Amount,
		&m.Fee,
		&m.Type,
		&m.Status,
		&m.Reference,
		&m.ReversalOf,
		&m.IdempotencyKey,
		&m.ProcessingMs,
		&m.CompletedAt,
		&m.FailedReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxTransactionRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := r.findOne(ctx, query, transactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, err
}

// FindReversalOf retrieves the reversal pointing at originalID, if any.
func (r *PgxTransactionRepository) FindReversalOf(ctx context.Context, originalID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reversal_of = $1;`
	txn, err := r.findOne(ctx, query, originalID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find reversal of transaction %s: %w", originalID, err)
	}
	return txn, err
}

// FindTransactionByIdempotencyKey retrieves a transaction by its client-supplied key.
func (r *PgxTransactionRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1;`
	txn, err := r.findOne(ctx, query, key)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find transaction by idempotency key: %w", err)
	}
	return txn, err
}

// SumAmountsInWindow sums the account's outgoing amounts of the given types
// with status COMPLETED or PROCESSING and created_at in [from, to).
// PROCESSING rows count so in-flight transfers consume limit headroom.
func (r *PgxTransactionRepository) SumAmountsInWindow(ctx context.Context, accountID string, types []domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	if len(types) == 0 {
		return decimal.Zero, nil
	}
	typeStrs := make([]string, len(types))
	for i, t := range types {
		typeStrs[i] = string(t)
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE from_account_id = $1
		  AND txn_type = ANY($2)
		  AND status IN ('COMPLETED', 'PROCESSING')
		  AND created_at >= $3 AND created_at < $4;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, typeStrs, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum window amounts for account %s: %w", accountID, err)
	}
	return sum, nil
}

// PendingOutgoing returns the total committed-but-unsettled outgoing value
// (amount+fee of PENDING/PROCESSING transactions) and their count.
func (r *PgxTransactionRepository) PendingOutgoing(ctx context.Context, accountID string) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(amount + fee), 0), COUNT(*)
		FROM transactions
		WHERE from_account_id = $1 AND status IN ('PENDING', 'PROCESSING');
	`
	var sum decimal.Decimal
	var count int
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to sum pending outgoing for account %s: %w", accountID, err)
	}
	return sum, count, nil
}

// ListTransactionsByAccountID retrieves a page of transactions touching the
// account, newest first, using (created_at, transaction_id) cursor pagination.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (from_account_id = $1 OR to_account_id = $1)
	`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, cursorAt, cursorID)
	}

	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelTxns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}

	var next *string
	if len(modelTxns) > limit {
		modelTxns = modelTxns[:limit]
		last := modelTxns[len(modelTxns)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
		next = &token
	}

	return mapping.ToDomainTransactionSlice(modelTxns), next, nil
}

func (r *PgxTransactionRepository) insertTransaction(ctx context.Context, tx pgx.Tx, m models.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.FromAccountID,
		m.ToAccountID,
		m.Amount,
		m.Fee,
		m.Type,
		m.Status,
		m.Reference,
		m.ReversalOf,
		m.IdempotencyKey,
		m.ProcessingMs,
		m.CompletedAt,
		m.FailedReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction %s conflicts on %s", apperrors.ErrDuplicate, m.TransactionID, pgErr.ConstraintName)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// SaveTransfer executes a validated transfer as one atomic unit:
//  1. insert the transaction row in PROCESSING
//  2. lock both account rows in deterministic order
//  3. re-check existence and active state under the lock
//  4. conditionally debit the source (amount+fee, balance must stay >= 0)
//  5. credit the destination
//  6. record the fee row when fee > 0
//  7. flip the transaction to COMPLETED
//
// Any failure rolls the whole unit back; balances and history never diverge.
func (r *PgxTransactionRepository) SaveTransfer(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	if err := r.insertTransaction(ctx, tx, m); err != nil {
		return err
	}

	accounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{m.FromAccountID, m.ToAccountID})
	if err != nil {
		return fmt.Errorf("failed to lock accounts for transfer %s: %w", m.TransactionID, err)
	}
	from, fromOK := accounts[m.FromAccountID]
	to, toOK := accounts[m.ToAccountID]
	if !fromOK || !toOK {
		return fmt.Errorf("%w: account missing for transfer %s", apperrors.ErrNotFound, m.TransactionID)
	}
	if !from.IsActive || !to.IsActive {
		return fmt.Errorf("%w: transfer %s touches an inactive account", apperrors.ErrAccountInactive, m.TransactionID)
	}

	total := m.Amount.Add(m.Fee)
	minBalance := decimal.Zero
	if err := r.accountRepo.AdjustBalanceInTx(ctx, tx, m.FromAccountID, total.Neg(), &minBalance, m.CreatedBy, m.CreatedAt); err != nil {
		return err
	}
	if err := r.accountRepo.AdjustBalanceInTx(ctx, tx, m.ToAccountID, m.Amount, nil, m.CreatedBy, m.CreatedAt); err != nil {
		return err
	}

	if m.Fee.IsPositive() {
		feeRow := models.TransactionFee{
			FeeID:         uuid.NewString(),
			TransactionID: m.TransactionID,
			AccountID:     m.FromAccountID,
			Amount:        m.Fee,
			CreatedAt:     m.CreatedAt,
		}
		feeQuery := `
			INSERT INTO transaction_fees (fee_id, transaction_id, account_id, amount, created_at)
			VALUES ($1, $2, $3, $4, $5);
		`
		if _, err := tx.Exec(ctx, feeQuery, feeRow.FeeID, feeRow.TransactionID, feeRow.AccountID, feeRow.Amount, feeRow.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert fee row for transaction %s: %w", m.TransactionID, err)
		}
	}

	completeQuery := `
		UPDATE transactions
		SET status = $2,
		    completed_at = $3,
		    processing_ms = (EXTRACT(EPOCH FROM ($3::timestamptz - created_at)) * 1000)::bigint,
		    last_updated_at = $3
		WHERE transaction_id = $1;
	`
	completedAt := m.CreatedAt
	if m.CompletedAt != nil {
		completedAt = *m.CompletedAt
	}
	if _, err := tx.Exec(ctx, completeQuery, m.TransactionID, string(domain.StatusCompleted), completedAt); err != nil {
		return fmt.Errorf("failed to complete transaction %s: %w", m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// SaveReversal atomically reverses a completed transaction. The original row
// is locked FOR UPDATE and both preconditions (status COMPLETED, no existing
// reversal) are re-verified under that lock, so concurrent reversal attempts
// serialize and exactly one wins. The payer gets back amount+fee; the
// recipient is debited the amount, conditionally so the ledger never drives a
// balance negative.
func (r *PgxTransactionRepository) SaveReversal(ctx context.Context, reversal domain.Transaction) error {
	if reversal.ReversalOf == nil {
		return fmt.Errorf("%w: reversal is missing the original transaction reference", apperrors.ErrValidation)
	}
	originalID := *reversal.ReversalOf
	m := mapping.ToModelTransaction(reversal)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	lockQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	origModel, err := scanTransaction(tx.QueryRow(ctx, lockQuery, originalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, originalID)
		}
		return fmt.Errorf("failed to lock transaction %s: %w", originalID, err)
	}
	original := mapping.ToDomainTransaction(origModel)

	if original.Status != domain.StatusCompleted {
		return fmt.Errorf("%w: transaction %s has status %s", apperrors.ErrNotReversible, originalID, original.Status)
	}

	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM transactions WHERE reversal_of = $1);`
	if err := tx.QueryRow(ctx, existsQuery, originalID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check for existing reversal of %s: %w", originalID, err)
	}
	if exists {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, originalID)
	}

	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{original.FromAccountID, original.ToAccountID}); err != nil {
		return fmt.Errorf("failed to lock accounts for reversal of %s: %w", originalID, err)
	}

	// Restore the payer in full, including the fee they were charged.
	refund := original.Amount.Add(original.Fee)
	if err := r.accountRepo.AdjustBalanceInTx(ctx, tx, original.FromAccountID, refund, nil, m.CreatedBy, m.CreatedAt); err != nil {
		return err
	}
	minBalance := decimal.Zero
	if err := r.accountRepo.AdjustBalanceInTx(ctx, tx, original.ToAccountID, original.Amount.Neg(), &minBalance, m.CreatedBy, m.CreatedAt); err != nil {
		return err
	}

	m.Status = string(domain.StatusCompleted)
	if err := r.insertTransaction(ctx, tx, m); err != nil {
		return err
	}

	markQuery := `
		UPDATE transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, markQuery, originalID, string(domain.StatusReversed), m.CreatedAt, m.CreatedBy, string(domain.StatusCompleted))
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s as reversed: %w", originalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotReversible, originalID)
	}

	return r.Commit(ctx, tx)
}
