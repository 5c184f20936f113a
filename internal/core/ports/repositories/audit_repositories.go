package repositories

import (
	"context"

	"github.com/finvault/ledgersvc/internal/core/domain"
)

// AuditRepository appends immutable audit entries. Append failures are the
// caller's problem to log, never to propagate into the triggering operation.
type AuditRepository interface {
	AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}
