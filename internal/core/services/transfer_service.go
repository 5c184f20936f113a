package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finvault/ledgersvc/internal/apperrors"
	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/dto"
	"github.com/finvault/ledgersvc/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// transferService is the orchestration core: it validates transfer requests,
// hands the atomic balance mutation to the repository, and records the
// audit/notification side effects. All monetary state transitions happen
// inside a single repository call so a crash can never leave a half-applied
// transfer.
type transferService struct {
	txnRepo        portsrepo.TransactionRepositoryFacade
	accountRepo    portsrepo.AccountReader
	userRepo       portsrepo.UserReader
	fees           portssvc.FeeSvcFacade
	limits         portssvc.LimitSvcFacade
	audit          portssvc.AuditSvcFacade
	notifier       portssvc.NotificationDispatcher
	clock          portssvc.Clock
	largeThreshold decimal.Decimal
}

// NewTransferService creates a new transfer service.
func NewTransferService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	userRepo portsrepo.UserReader,
	fees portssvc.FeeSvcFacade,
	limits portssvc.LimitSvcFacade,
	audit portssvc.AuditSvcFacade,
	notifier portssvc.NotificationDispatcher,
	clock portssvc.Clock,
	largeThreshold decimal.Decimal,
) portssvc.TransferSvcFacade {
	return &transferService{
		txnRepo:        txnRepo,
		accountRepo:    accountRepo,
		userRepo:       userRepo,
		fees:           fees,
		limits:         limits,
		audit:          audit,
		notifier:       notifier,
		clock:          clock,
		largeThreshold: largeThreshold,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// ValidateTransfer runs every validation rule and accumulates failures rather
// than stopping at the first one, so callers get the complete picture in one
// round trip. A rule failure is a result, not an error; the error return is
// reserved for infrastructure faults.
func (s *transferService) ValidateTransfer(ctx context.Context, req dto.TransferRequest, userID string) (*dto.ValidationResult, error) {
	result, _, err := s.validate(ctx, req, userID)
	return result, err
}

func (s *transferService) validate(ctx context.Context, req dto.TransferRequest, userID string) (*dto.ValidationResult, map[string]domain.Account, error) {
	result := &dto.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings([]string{req.FromAccountID, req.ToAccountID}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch accounts for validation: %w", err)
	}

	from, fromOK := accounts[req.FromAccountID]
	to, toOK := accounts[req.ToAccountID]
	if !fromOK {
		result.Errors = append(result.Errors, fmt.Sprintf("source account %s not found", req.FromAccountID))
	}
	if !toOK {
		result.Errors = append(result.Errors, fmt.Sprintf("destination account %s not found", req.ToAccountID))
	}
	if !fromOK || !toOK {
		// Remaining rules need both accounts; stop here.
		return result, accounts, nil
	}

	if !from.IsActive {
		result.Errors = append(result.Errors, fmt.Sprintf("source account %s is inactive", from.AccountID))
	}
	if !to.IsActive {
		result.Errors = append(result.Errors, fmt.Sprintf("destination account %s is inactive", to.AccountID))
	}

	if from.OwnerID != userID && !s.isAdmin(ctx, userID) {
		result.Errors = append(result.Errors, "user does not own the source account")
	}

	if req.FromAccountID == req.ToAccountID {
		result.Errors = append(result.Errors, apperrors.ErrSameAccount.Error())
	}

	if !req.Amount.IsPositive() {
		result.Errors = append(result.Errors, "transfer amount must be positive")
	}

	txnType := req.NormalizedType()
	result.EstimatedFee = s.fees.EstimateFee(req.Amount, txnType)

	if from.Balance.LessThan(req.Amount.Add(result.EstimatedFee)) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"insufficient funds: balance %s is less than amount %s plus fee %s",
			from.Balance, req.Amount, result.EstimatedFee))
	}

	limitStatuses, err := s.limits.LimitStatuses(ctx, from, txnType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute limit usage: %w", err)
	}
	result.Limits = limitStatuses
	for _, ls := range limitStatuses {
		if ls.RemainingAmount.LessThan(req.Amount) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"%s %s limit exceeded: remaining %s, requested %s",
				strings.ToLower(string(ls.LimitPeriod)), strings.ToLower(string(ls.LimitType)),
				ls.RemainingAmount, req.Amount))
		}
	}

	if req.Amount.GreaterThan(s.largeThreshold) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"large transfer: amount %s exceeds %s and may be subject to additional review",
			req.Amount, s.largeThreshold))
	}

	result.IsValid = len(result.Errors) == 0
	return result, accounts, nil
}

// ProcessTransfer validates the request, applies the balance mutation
// atomically and records the outcome. The pre-flight validation is advisory:
// the repository re-checks funds under row locks, so a concurrent spend
// between validation and commit fails the transfer instead of overdrawing.
func (s *transferService) ProcessTransfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	started := s.clock.Now()

	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.txnRepo.FindTransactionByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err == nil {
			logger.Info("Idempotency key already processed, returning existing transaction",
				slog.String("transactionID", existing.TransactionID))
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	validation, accounts, err := s.validate(ctx, req, userID)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		s.audit.Record(ctx, domain.AuditEntry{
			UserID:     &userID,
			Action:     domain.AuditTransactionFail,
			Resource:   "transaction",
			ResourceID: req.FromAccountID,
			Details: domain.TransferFailedDetails{
				FromAccountID: req.FromAccountID,
				ToAccountID:   req.ToAccountID,
				Amount:        req.Amount,
				Reasons:       validation.Errors,
			},
		})
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(validation.Errors, "; "))
	}

	now := s.clock.Now().UTC()
	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		FromAccountID:  req.FromAccountID,
		ToAccountID:    req.ToAccountID,
		Amount:         req.Amount,
		Fee:            validation.EstimatedFee,
		Type:           req.NormalizedType(),
		Status:         domain.StatusProcessing,
		Reference:      req.Reference,
		IdempotencyKey: req.IdempotencyKey,
		CompletedAt:    &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.txnRepo.SaveTransfer(ctx, txn); err != nil {
		if req.IdempotencyKey != nil && errors.Is(err, apperrors.ErrDuplicate) {
			// Lost an idempotency race; the winner's row is the answer.
			existing, findErr := s.txnRepo.FindTransactionByIdempotencyKey(ctx, *req.IdempotencyKey)
			if findErr == nil {
				return existing, nil
			}
		}
		s.audit.Record(ctx, domain.AuditEntry{
			UserID:     &userID,
			Action:     domain.AuditTransactionFail,
			Resource:   "transaction",
			ResourceID: txn.TransactionID,
			Details: domain.TransferFailedDetails{
				FromAccountID: req.FromAccountID,
				ToAccountID:   req.ToAccountID,
				Amount:        req.Amount,
				Reasons:       []string{err.Error()},
			},
		})
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return nil, fmt.Errorf("failed to process transfer: %w", err)
		}
		return nil, fmt.Errorf("%w: failed to process transfer: %v", apperrors.ErrStorage, err)
	}

	txn.Status = domain.StatusCompleted
	txn.ProcessingTime = s.clock.Now().Sub(started)

	s.audit.Record(ctx, domain.AuditEntry{
		UserID:     &userID,
		Action:     domain.AuditTransactionComplete,
		Resource:   "transaction",
		ResourceID: txn.TransactionID,
		Details: domain.TransferCompletedDetails{
			TransactionID: txn.TransactionID,
			FromAccountID: txn.FromAccountID,
			ToAccountID:   txn.ToAccountID,
			Amount:        txn.Amount,
			Fee:           txn.Fee,
			Type:          txn.Type,
		},
	})

	payload := dto.ToTransactionResponse(&txn)
	s.notifier.Notify(ctx, accounts[txn.FromAccountID].OwnerID, portssvc.EventTransferCompleted, payload)
	if accounts[txn.ToAccountID].OwnerID != accounts[txn.FromAccountID].OwnerID {
		s.notifier.Notify(ctx, accounts[txn.ToAccountID].OwnerID, portssvc.EventTransferCompleted, payload)
	}

	logger.Info("Transfer completed",
		slog.String("transactionID", txn.TransactionID),
		slog.String("amount", txn.Amount.String()),
		slog.String("fee", txn.Fee.String()),
	)
	return &txn, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *transferService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ReverseTransaction creates a compensating REVERSED entry for a completed
// transaction. Only admins may reverse; a transaction can be reversed at most
// once. The reversal credits the payer with amount plus fee and debits the
// recipient the amount, restoring both parties to their pre-transfer position.
func (s *transferService) ReverseTransaction(ctx context.Context, transactionID string, reason string, adminUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	admin, err := s.userRepo.FindUserByID(ctx, adminUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s not found", apperrors.ErrForbidden, adminUserID)
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", adminUserID, err)
	}
	if !admin.IsAdmin() {
		return nil, fmt.Errorf("%w: reversal requires admin role", apperrors.ErrForbidden)
	}

	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", transactionID, err)
	}
	// Advisory pre-checks; the repository re-verifies both under the row lock.
	if original.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("%w: transaction %s has status %s", apperrors.ErrNotReversible, transactionID, original.Status)
	}
	if _, err := s.txnRepo.FindReversalOf(ctx, transactionID); err == nil {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, transactionID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing reversal of %s: %w", transactionID, err)
	}

	now := s.clock.Now().UTC()
	reversal := domain.Transaction{
		TransactionID: uuid.NewString(),
		FromAccountID: original.ToAccountID,
		ToAccountID:   original.FromAccountID,
		Amount:        original.Amount,
		Fee:           decimal.Zero,
		Type:          domain.TypeReversal,
		Status:        domain.StatusProcessing,
		Reference:     fmt.Sprintf("Reversal of %s: %s", original.TransactionID, reason),
		ReversalOf:    &original.TransactionID,
		CompletedAt:   &now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     adminUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: adminUserID,
		},
	}

	if err := s.txnRepo.SaveReversal(ctx, reversal); err != nil {
		if errors.Is(err, apperrors.ErrNotReversible) || errors.Is(err, apperrors.ErrAlreadyReversed) || errors.Is(err, apperrors.ErrInsufficientFunds) {
			return nil, fmt.Errorf("failed to reverse transaction %s: %w", transactionID, err)
		}
		return nil, fmt.Errorf("%w: failed to reverse transaction %s: %v", apperrors.ErrStorage, transactionID, err)
	}

	reversal.Status = domain.StatusCompleted

	s.audit.Record(ctx, domain.AuditEntry{
		UserID:     &adminUserID,
		Action:     domain.AuditTransactionReversed,
		Resource:   "transaction",
		ResourceID: original.TransactionID,
		Details: domain.TransferReversedDetails{
			OriginalTransactionID: original.TransactionID,
			ReversalTransactionID: reversal.TransactionID,
			Amount:                original.Amount,
			Reason:                reason,
		},
	})

	if accounts, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings([]string{original.FromAccountID, original.ToAccountID})); err == nil {
		payload := dto.ToTransactionResponse(&reversal)
		s.notifier.Notify(ctx, accounts[original.FromAccountID].OwnerID, portssvc.EventTransferReversed, payload)
		if accounts[original.ToAccountID].OwnerID != accounts[original.FromAccountID].OwnerID {
			s.notifier.Notify(ctx, accounts[original.ToAccountID].OwnerID, portssvc.EventTransferReversed, payload)
		}
	} else {
		logger.Warn("Failed to fetch accounts for reversal notification", slog.String("error", err.Error()))
	}

	logger.Info("Transaction reversed",
		slog.String("originalTransactionID", original.TransactionID),
		slog.String("reversalTransactionID", reversal.TransactionID),
	)
	return &reversal, nil
}

// GetAccountBalance returns the current balance alongside the available
// balance, which deducts the account's own pending outgoing amounts.
func (s *transferService) GetAccountBalance(ctx context.Context, accountID, userID string) (*dto.AccountBalanceResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	if account.OwnerID != userID && !s.isAdmin(ctx, userID) {
		return nil, fmt.Errorf("%w: user does not own account %s", apperrors.ErrForbidden, accountID)
	}

	pendingAmount, pendingCount, err := s.txnRepo.PendingOutgoing(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum pending transactions for account %s: %w", accountID, err)
	}

	return &dto.AccountBalanceResponse{
		AccountID:               account.AccountID,
		Balance:                 account.Balance,
		AvailableBalance:        account.Balance.Sub(pendingAmount),
		PendingTransactionCount: pendingCount,
	}, nil
}

// ListAccountTransactions returns a page of the account's transaction history,
// newest first. Callers must own the account or be admins.
func (s *transferService) ListAccountTransactions(ctx context.Context, accountID, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", accountID, err)
	}
	if account.OwnerID != userID && !s.isAdmin(ctx, userID) {
		return nil, fmt.Errorf("%w: user does not own account %s", apperrors.ErrForbidden, accountID)
	}

	txns, next, err := s.txnRepo.ListTransactionsByAccountID(ctx, accountID, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}

	return &dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns), NextToken: next}, nil
}

func (s *transferService) isAdmin(ctx context.Context, userID string) bool {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return false
	}
	return user.IsAdmin()
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
