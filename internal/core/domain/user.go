package domain

// UserRole controls elevated operations: reversal requires RoleAdmin, and
// admins may initiate transfers from accounts they do not own.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is the minimal identity record the engine needs for ownership and
// privilege checks. Credential handling lives outside this service.
type User struct {
	UserID string   `json:"userID"` // Primary Key (UUID)
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	AuditFields
}

// IsAdmin reports whether the user holds administrative privilege.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
