package mapping

import (
	"github.com/finvault/ledgersvc/internal/core/domain"
	"github.com/finvault/ledgersvc/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:      d.UserID,
		Name:        d.Name,
		Role:        string(d.Role),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:      m.UserID,
		Name:        m.Name,
		Role:        domain.UserRole(m.Role),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
