package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finvault/ledgersvc/internal/apperrors"
	"github.com/finvault/ledgersvc/internal/core/domain"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/core/services"
	"github.com/finvault/ledgersvc/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransferServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	mockUserRepo    *MockUserRepository
	mockLimitSvc    *MockLimitSvc
	mockAuditSvc    *MockAuditSvc
	mockNotifier    *MockNotifier
	clock           *fakeClock
	service         portssvc.TransferSvcFacade

	ownerID     string
	otherUserID string
	adminID     string
	fromAccount domain.Account
	toAccount   domain.Account
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockLimitSvc = new(MockLimitSvc)
	suite.mockAuditSvc = new(MockAuditSvc)
	suite.mockNotifier = new(MockNotifier)
	suite.clock = &fakeClock{now: time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)}

	suite.service = services.NewTransferService(
		suite.mockTxnRepo,
		suite.mockAccountRepo,
		suite.mockUserRepo,
		services.NewFeeService(services.DefaultFeeConfig()),
		suite.mockLimitSvc,
		suite.mockAuditSvc,
		suite.mockNotifier,
		suite.clock,
		decimal.NewFromInt(10000),
	)

	suite.ownerID = uuid.NewString()
	suite.otherUserID = uuid.NewString()
	suite.adminID = uuid.NewString()

	suite.fromAccount = domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      suite.ownerID,
		Balance:      decimal.NewFromInt(1000),
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.toAccount = domain.Account{
		AccountID:    uuid.NewString(),
		OwnerID:      suite.otherUserID,
		Balance:      decimal.NewFromInt(50),
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

func (suite *TransferServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.fromAccount.AccountID: suite.fromAccount,
		suite.toAccount.AccountID:   suite.toAccount,
	}
}

func (suite *TransferServiceTestSuite) transferRequest(amount int64) dto.TransferRequest {
	return dto.TransferRequest{
		FromAccountID: suite.fromAccount.AccountID,
		ToAccountID:   suite.toAccount.AccountID,
		Amount:        decimal.NewFromInt(amount),
	}
}

func (suite *TransferServiceTestSuite) expectAccountFetch() {
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, []string{suite.fromAccount.AccountID, suite.toAccount.AccountID}).
		Return(suite.accountsMap(), nil).Once()
}

func (suite *TransferServiceTestSuite) expectNoLimits() {
	suite.mockLimitSvc.On("LimitStatuses", mock.Anything, suite.fromAccount, domain.TypeTransfer).
		Return([]domain.LimitStatus{}, nil).Once()
}

// --- ValidateTransfer ---

func (suite *TransferServiceTestSuite) TestValidateTransfer_Success() {
	suite.expectAccountFetch()
	suite.expectNoLimits()

	result, err := suite.service.ValidateTransfer(context.Background(), suite.transferRequest(300), suite.ownerID)

	suite.Require().NoError(err)
	suite.True(result.IsValid)
	suite.Empty(result.Errors)
	suite.Empty(result.Warnings)
	suite.True(decimal.RequireFromString("2.5").Equal(result.EstimatedFee))
}

func (suite *TransferServiceTestSuite) TestValidateTransfer_AccumulatesAllErrors() {
	suite.toAccount.IsActive = false
	suite.fromAccount.Balance = decimal.NewFromInt(100)
	suite.expectAccountFetch()
	suite.mockLimitSvc.On("LimitStatuses", mock.Anything, suite.fromAccount, domain.TypeTransfer).
		Return([]domain.LimitStatus{
			{
				LimitType:       domain.LimitTransfer,
				LimitPeriod:     domain.PeriodDaily,
				TotalLimit:      decimal.NewFromInt(500),
				UsedAmount:      decimal.NewFromInt(400),
				RemainingAmount: decimal.NewFromInt(100),
			},
		}, nil).Once()

	result, err := suite.service.ValidateTransfer(context.Background(), suite.transferRequest(300), suite.ownerID)

	suite.Require().NoError(err)
	suite.False(result.IsValid)
	// Inactive destination, insufficient funds and the limit breach must all
	// be reported in one pass.
	suite.Len(result.Errors, 3)
}

func (suite *TransferServiceTestSuite) TestValidateTransfer_MissingAccountIsResultNotError() {
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).
		Return(map[string]domain.Account{suite.fromAccount.AccountID: suite.fromAccount}, nil).Once()

	result, err := suite.service.ValidateTransfer(context.Background(), suite.transferRequest(300), suite.ownerID)

	suite.Require().NoError(err)
	suite.False(result.IsValid)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "not found")
	suite.mockLimitSvc.AssertNotCalled(suite.T(), "LimitStatuses")
}

func (suite *TransferServiceTestSuite) TestValidateTransfer_SameAccount() {
	req := suite.transferRequest(100)
	req.ToAccountID = suite.fromAccount.AccountID

	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, []string{suite.fromAccount.AccountID}).
		Return(map[string]domain.Account{suite.fromAccount.AccountID: suite.fromAccount}, nil).Once()
	suite.mockLimitSvc.On("LimitStatuses", mock.Anything, suite.fromAccount, domain.TypeTransfer).
		Return([]domain.LimitStatus{}, nil).Once()

	result, err := suite.service.ValidateTransfer(context.Background(), req, suite.ownerID)

	suite.Require().NoError(err)
	suite.False(result.IsValid)
	suite.Contains(result.Errors, apperrors.ErrSameAccount.Error())
}

func (suite *TransferServiceTestSuite) TestValidateTransfer_NonOwnerRejected() {
	suite.expectAccountFetch()
	suite.expectNoLimits()
	suite.mockUserRepo.On("FindUserByID", mock.Anything, suite.otherUserID).
		Return(&domain.User{UserID: suite.otherUserID, Role: domain.RoleUser}, nil).Once()

	result, err := suite.service.ValidateTransfer(context.Background(), suite.transferRequest(300), suite.otherUserID)

	suite.Require().NoError(err)
	suite.False(result.IsValid)
	suite.Contains(result.Errors, "user does not own the source account")
}

func (suite *TransferServiceTestSuite) TestValidateTransfer_AdminMaySendFromAnyAccount() {
	suite.expectAccountFetch()
	suite.expectNoLimits()
	suite.mockUserRepo.On("FindUserByID", mock.Anything, suite.adminID).
		Return(&domain.User{UserID: suite.adminID, Role: domain.RoleAdmin}, nil).Once()

	result, err := suite.service.ValidateTransfer(context.Background(), suite.transferRequest(300), suite.adminID)

	suite.Require().NoError(err)
	suite.True(result.IsValid)
}

func (suite *TransferServiceTestSuite) TestValidateTransfer_LargeTransferWarning() {
	suite.fromAccount.Balance = decimal.NewFromInt(50000)
	suite.expectAccountFetch()
	suite.expectNoLimits()

	result, err := suite.service.ValidateTransfer(context.Background(), suite.transferRequest(15000), suite.ownerID)

	suite.Require().NoError(err)
	suite.True(result.IsValid, "a large transfer is a warning, not an error")
	suite.Require().Len(result.Warnings, 1)
	suite.Contains(result.Warnings[0], "large transfer")
}

// --- ProcessTransfer ---

func (suite *TransferServiceTestSuite) TestProcessTransfer_Success() {
	ctx := context.Background()
	suite.expectAccountFetch()
	suite.expectNoLimits()

	var saved domain.Transaction
	suite.mockTxnRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Transaction) }).
		Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditTransactionComplete
	})).Return().Once()
	suite.mockNotifier.On("Notify", ctx, suite.ownerID, portssvc.EventTransferCompleted, mock.Anything).Return().Once()
	suite.mockNotifier.On("Notify", ctx, suite.otherUserID, portssvc.EventTransferCompleted, mock.Anything).Return().Once()

	txn, err := suite.service.ProcessTransfer(ctx, suite.transferRequest(300), suite.ownerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.Equal(domain.TypeTransfer, txn.Type)
	suite.True(decimal.NewFromInt(300).Equal(txn.Amount))
	suite.True(decimal.RequireFromString("2.5").Equal(txn.Fee))
	suite.Equal(suite.ownerID, txn.CreatedBy)

	// The repository receives the transaction in PROCESSING; only the atomic
	// unit may complete it.
	suite.Equal(domain.StatusProcessing, saved.Status)
	suite.Equal(txn.TransactionID, saved.TransactionID)

	suite.mockAuditSvc.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestProcessTransfer_ValidationFailureIsAudited() {
	ctx := context.Background()
	suite.fromAccount.Balance = decimal.NewFromInt(10)
	suite.expectAccountFetch()
	suite.expectNoLimits()

	suite.mockAuditSvc.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditTransactionFail
	})).Return().Once()

	txn, err := suite.service.ProcessTransfer(ctx, suite.transferRequest(300), suite.ownerID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Nil(txn)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransfer")
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestProcessTransfer_InsufficientFundsAtCommit() {
	ctx := context.Background()
	suite.expectAccountFetch()
	suite.expectNoLimits()

	// Advisory validation passed but a concurrent spend drained the account
	// before the atomic unit ran.
	suite.mockTxnRepo.On("SaveTransfer", ctx, mock.Anything).
		Return(apperrors.ErrInsufficientFunds).Once()
	suite.mockAuditSvc.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditTransactionFail
	})).Return().Once()

	txn, err := suite.service.ProcessTransfer(ctx, suite.transferRequest(300), suite.ownerID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrInsufficientFunds))
	suite.Nil(txn)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Notify")
}

func (suite *TransferServiceTestSuite) TestProcessTransfer_IdempotentReplayReturnsExisting() {
	ctx := context.Background()
	key := "client-key-1"
	existing := &domain.Transaction{
		TransactionID:  uuid.NewString(),
		Status:         domain.StatusCompleted,
		IdempotencyKey: &key,
	}
	suite.mockTxnRepo.On("FindTransactionByIdempotencyKey", ctx, key).Return(existing, nil).Once()

	req := suite.transferRequest(300)
	req.IdempotencyKey = &key

	txn, err := suite.service.ProcessTransfer(ctx, req, suite.ownerID)

	suite.Require().NoError(err)
	suite.Equal(existing.TransactionID, txn.TransactionID)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransfer")
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs")
}

// --- ReverseTransaction ---

func (suite *TransferServiceTestSuite) completedTransaction() *domain.Transaction {
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		FromAccountID: suite.fromAccount.AccountID,
		ToAccountID:   suite.toAccount.AccountID,
		Amount:        decimal.NewFromInt(300),
		Fee:           decimal.RequireFromString("2.5"),
		Type:          domain.TypeTransfer,
		Status:        domain.StatusCompleted,
	}
}

func (suite *TransferServiceTestSuite) TestReverseTransaction_Success() {
	ctx := context.Background()
	original := suite.completedTransaction()

	suite.mockUserRepo.On("FindUserByID", ctx, suite.adminID).
		Return(&domain.User{UserID: suite.adminID, Role: domain.RoleAdmin}, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockTxnRepo.On("FindReversalOf", ctx, original.TransactionID).Return(nil, apperrors.ErrNotFound).Once()

	var saved domain.Transaction
	suite.mockTxnRepo.On("SaveReversal", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Transaction) }).
		Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditTransactionReversed && e.ResourceID == original.TransactionID
	})).Return().Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.fromAccount.AccountID, suite.toAccount.AccountID}).
		Return(suite.accountsMap(), nil).Once()
	suite.mockNotifier.On("Notify", ctx, suite.ownerID, portssvc.EventTransferReversed, mock.Anything).Return().Once()
	suite.mockNotifier.On("Notify", ctx, suite.otherUserID, portssvc.EventTransferReversed, mock.Anything).Return().Once()

	reversal, err := suite.service.ReverseTransaction(ctx, original.TransactionID, "fraudulent charge", suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(domain.TypeReversal, reversal.Type)
	suite.Equal(domain.StatusCompleted, reversal.Status)
	// Direction flips; the amount is preserved and the reversal itself is free.
	suite.Equal(original.ToAccountID, reversal.FromAccountID)
	suite.Equal(original.FromAccountID, reversal.ToAccountID)
	suite.True(original.Amount.Equal(reversal.Amount))
	suite.True(reversal.Fee.IsZero())
	suite.Require().NotNil(reversal.ReversalOf)
	suite.Equal(original.TransactionID, *reversal.ReversalOf)
	suite.Contains(reversal.Reference, "fraudulent charge")

	suite.Equal(domain.StatusProcessing, saved.Status)
	suite.mockAuditSvc.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestReverseTransaction_NonAdminForbidden() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.ownerID).
		Return(&domain.User{UserID: suite.ownerID, Role: domain.RoleUser}, nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, uuid.NewString(), "reason", suite.ownerID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrForbidden))
	suite.Nil(reversal)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionByID")
}

func (suite *TransferServiceTestSuite) TestReverseTransaction_OnlyCompletedIsReversible() {
	ctx := context.Background()
	original := suite.completedTransaction()
	original.Status = domain.StatusFailed

	suite.mockUserRepo.On("FindUserByID", ctx, suite.adminID).
		Return(&domain.User{UserID: suite.adminID, Role: domain.RoleAdmin}, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, original.TransactionID, "reason", suite.adminID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrNotReversible))
	suite.Nil(reversal)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveReversal")
}

func (suite *TransferServiceTestSuite) TestReverseTransaction_SecondReversalRejected() {
	ctx := context.Background()
	original := suite.completedTransaction()

	suite.mockUserRepo.On("FindUserByID", ctx, suite.adminID).
		Return(&domain.User{UserID: suite.adminID, Role: domain.RoleAdmin}, nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockTxnRepo.On("FindReversalOf", ctx, original.TransactionID).
		Return(&domain.Transaction{TransactionID: uuid.NewString()}, nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, original.TransactionID, "reason", suite.adminID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrAlreadyReversed))
	suite.Nil(reversal)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveReversal")
}

// --- GetAccountBalance ---

func (suite *TransferServiceTestSuite) TestGetAccountBalance_DeductsPendingOutgoing() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).
		Return(&suite.fromAccount, nil).Once()
	suite.mockTxnRepo.On("PendingOutgoing", ctx, suite.fromAccount.AccountID).
		Return(decimal.RequireFromString("120.50"), 2, nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, suite.fromAccount.AccountID, suite.ownerID)

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1000).Equal(balance.Balance))
	suite.True(decimal.RequireFromString("879.50").Equal(balance.AvailableBalance))
	suite.Equal(2, balance.PendingTransactionCount)
}

func (suite *TransferServiceTestSuite) TestGetAccountBalance_NonOwnerForbidden() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).
		Return(&suite.fromAccount, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.otherUserID).
		Return(&domain.User{UserID: suite.otherUserID, Role: domain.RoleUser}, nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, suite.fromAccount.AccountID, suite.otherUserID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrForbidden))
	suite.Nil(balance)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "PendingOutgoing")
}

// --- ListAccountTransactions ---

func (suite *TransferServiceTestSuite) TestListAccountTransactions_ReturnsPage() {
	ctx := context.Background()
	txns := []domain.Transaction{
		{TransactionID: uuid.NewString(), Amount: decimal.NewFromInt(10), Status: domain.StatusCompleted},
		{TransactionID: uuid.NewString(), Amount: decimal.NewFromInt(20), Status: domain.StatusCompleted},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.fromAccount.AccountID).
		Return(&suite.fromAccount, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsByAccountID", ctx, suite.fromAccount.AccountID, 10, (*string)(nil)).
		Return(txns, "next-token", nil).Once()

	page, err := suite.service.ListAccountTransactions(ctx, suite.fromAccount.AccountID, suite.ownerID, dto.ListTransactionsParams{Limit: 10})

	suite.Require().NoError(err)
	suite.Len(page.Transactions, 2)
	suite.Require().NotNil(page.NextToken)
	suite.Equal("next-token", *page.NextToken)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
