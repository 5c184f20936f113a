package dto

import (
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
)

// CreateUserRequest defines the data needed to register a user.
type CreateUserRequest struct {
	Name string          `json:"name" binding:"required"`
	Role domain.UserRole `json:"role" binding:"omitempty,oneof=USER ADMIN"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID    string          `json:"userID"`
	Name      string          `json:"name"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
