package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finvault/ledgersvc/internal/apperrors"
	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/dto"
	"github.com/finvault/ledgersvc/internal/middleware"
	"github.com/google/uuid"
)

// accountService handles account provisioning. It never mutates balances
// after creation; that is the transfer service's job.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	userRepo    portsrepo.UserReader
	audit       portssvc.AuditSvcFacade
	clock       portssvc.Clock
}

// NewAccountService creates a new account service.
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryFacade,
	userRepo portsrepo.UserReader,
	audit portssvc.AuditSvcFacade,
	clock portssvc.Clock,
) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, userRepo: userRepo, audit: audit, clock: clock}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount opens a new active account for the given owner. Limits are
// optional; a zero limit means the dimension is unenforced.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, ownerUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userRepo.FindUserByID(ctx, ownerUserID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: owner user %s not found", apperrors.ErrValidation, ownerUserID)
		}
		return nil, fmt.Errorf("failed to fetch owner %s: %w", ownerUserID, err)
	}

	if req.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", apperrors.ErrValidation)
	}
	limits := domain.TransferLimits{
		DailyTransfer:     req.DailyTransfer,
		WeeklyTransfer:    req.WeeklyTransfer,
		MonthlyTransfer:   req.MonthlyTransfer,
		DailyWithdrawal:   req.DailyWithdrawal,
		WeeklyWithdrawal:  req.WeeklyWithdrawal,
		MonthlyWithdrawal: req.MonthlyWithdrawal,
	}
	for _, l := range []struct {
		name  string
		value interface{ IsNegative() bool }
	}{
		{"dailyTransferLimit", limits.DailyTransfer},
		{"weeklyTransferLimit", limits.WeeklyTransfer},
		{"monthlyTransferLimit", limits.MonthlyTransfer},
		{"dailyWithdrawalLimit", limits.DailyWithdrawal},
		{"weeklyWithdrawalLimit", limits.WeeklyWithdrawal},
		{"monthlyWithdrawalLimit", limits.MonthlyWithdrawal},
	} {
		if l.value.IsNegative() {
			return nil, fmt.Errorf("%w: %s cannot be negative", apperrors.ErrValidation, l.name)
		}
	}

	now := s.clock.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      ownerUserID,
		Balance:      req.InitialBalance,
		CurrencyCode: req.CurrencyCode,
		IsActive:     true,
		Limits:       limits,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		UserID:     &ownerUserID,
		Action:     domain.AuditAccountCreated,
		Resource:   "account",
		ResourceID: account.AccountID,
		Metadata: map[string]string{
			"currencyCode":   account.CurrencyCode,
			"initialBalance": account.Balance.String(),
		},
	})

	logger.Info("Account created", slog.String("accountID", account.AccountID), slog.String("ownerID", ownerUserID))
	return &account, nil
}

// ListAccounts returns all accounts owned by the requesting user.
func (s *accountService) ListAccounts(ctx context.Context, ownerUserID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for owner %s: %w", ownerUserID, err)
	}
	return accounts, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	return account, nil
}

// DeactivateAccount soft-disables an account. Deactivated accounts keep their
// balance and history but cannot send or receive transfers.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, requestingUserID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}

	if account.OwnerID != requestingUserID {
		user, err := s.userRepo.FindUserByID(ctx, requestingUserID)
		if err != nil || !user.IsAdmin() {
			return fmt.Errorf("%w: user does not own account %s", apperrors.ErrForbidden, accountID)
		}
	}

	if !account.IsActive {
		return nil // already deactivated, nothing to do
	}

	now := s.clock.Now().UTC()
	if err := s.accountRepo.SetAccountActive(ctx, accountID, false, requestingUserID, now); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}

	s.audit.Record(ctx, domain.AuditEntry{
		UserID:     &requestingUserID,
		Action:     domain.AuditAccountDeactivated,
		Resource:   "account",
		ResourceID: accountID,
	})
	return nil
}
