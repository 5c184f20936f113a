package services

import (
	"context"
	"log/slog"

	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/middleware"
	"github.com/google/uuid"
)

// auditService records state-changing operations. Recording is strictly
// best-effort: append failures are logged and swallowed so they can never
// change the outcome of the operation being audited.
type auditService struct {
	auditRepo portsrepo.AuditRepository
	clock     portssvc.Clock
}

// NewAuditService creates a new audit recorder.
func NewAuditService(auditRepo portsrepo.AuditRepository, clock portssvc.Clock) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo, clock: clock}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, entry domain.AuditEntry) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now().UTC()
	}
	if entry.Action == "" && entry.Details != nil {
		entry.Action = entry.Details.AuditAction()
	}

	if err := s.auditRepo.AppendAuditEntry(ctx, entry); err != nil {
		logger.Error("Failed to append audit entry",
			slog.String("action", string(entry.Action)),
			slog.String("resource", entry.Resource),
			slog.String("resource_id", entry.ResourceID),
			slog.String("error", err.Error()),
		)
	}
}
