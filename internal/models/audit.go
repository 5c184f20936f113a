package models

import "time"

// AuditLog represents an append-only audit row. Details holds the typed
// payload serialized as JSONB.
type AuditLog struct {
	AuditID    string            `db:"audit_id"`
	UserID     *string           `db:"user_id"`
	Action     string            `db:"action"`
	Resource   string            `db:"resource"`
	ResourceID string            `db:"resource_id"`
	Details    []byte            `db:"details"`
	Metadata   map[string]string `db:"metadata"`
	CreatedAt  time.Time         `db:"created_at"`
}
