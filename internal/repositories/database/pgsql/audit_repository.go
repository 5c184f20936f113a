package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	"github.com/finvault/ledgersvc/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	pool *pgxpool.Pool
}

// newPgxAuditRepository creates a new repository for the audit log.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{pool: pool}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepository
var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// AppendAuditEntry inserts an audit row. The audit log is append-only: there
// are no update or delete operations on this table.
func (r *PgxAuditRepository) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details for %s: %w", entry.AuditID, err)
		}
	}
	m := models.AuditLog{
		AuditID:    entry.AuditID,
		UserID:     entry.UserID,
		Action:     string(entry.Action),
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    details,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}

	var metadata []byte
	if len(m.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(m.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata for %s: %w", entry.AuditID, err)
		}
	}

	query := `
		INSERT INTO audit_log (audit_id, user_id, action, resource, resource_id, details, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AuditID,
		m.UserID,
		m.Action,
		m.Resource,
		m.ResourceID,
		m.Details,
		metadata,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry %s: %w", entry.AuditID, err)
	}
	return nil
}
