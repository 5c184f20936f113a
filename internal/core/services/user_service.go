package services

import (
	"context"
	"fmt"

	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/dto"
	"github.com/google/uuid"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
	clock    portssvc.Clock
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, clock portssvc.Clock) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, clock: clock}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}

	now := s.clock.Now().UTC()
	user := domain.User{
		UserID: uuid.NewString(),
		Name:   req.Name,
		Role:   role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return user, nil
}
