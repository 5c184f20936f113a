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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockUserRepo    *MockUserRepository
	mockAuditSvc    *MockAuditSvc
	clock           *fakeClock
	service         portssvc.AccountSvcFacade

	ownerID string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockAuditSvc = new(MockAuditSvc)
	suite.clock = &fakeClock{now: time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)}
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockUserRepo, suite.mockAuditSvc, suite.clock)
	suite.ownerID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.ownerID).
		Return(&domain.User{UserID: suite.ownerID, Role: domain.RoleUser}, nil).Once()

	var saved domain.Account
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Account) }).
		Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditAccountCreated
	})).Return().Once()

	account, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		CurrencyCode:   "USD",
		InitialBalance: decimal.NewFromInt(100),
		DailyTransfer:  decimal.NewFromInt(500),
	}, suite.ownerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(suite.ownerID, account.OwnerID)
	suite.True(account.IsActive)
	suite.True(decimal.NewFromInt(100).Equal(account.Balance))
	suite.True(decimal.NewFromInt(500).Equal(account.Limits.DailyTransfer))
	suite.Equal(account.AccountID, saved.AccountID)
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownOwnerRejected() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.ownerID).
		Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{CurrencyCode: "USD"}, suite.ownerID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Nil(account)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestCreateAccount_NegativeLimitRejected() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.ownerID).
		Return(&domain.User{UserID: suite.ownerID, Role: domain.RoleUser}, nil).Once()

	account, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		CurrencyCode:   "USD",
		WeeklyTransfer: decimal.NewFromInt(-1),
	}, suite.ownerID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Nil(account)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestListAccounts_ReturnsOwnedAccounts() {
	ctx := context.Background()
	owned := []domain.Account{
		{AccountID: uuid.NewString(), OwnerID: suite.ownerID},
		{AccountID: uuid.NewString(), OwnerID: suite.ownerID},
	}
	suite.mockAccountRepo.On("ListAccountsByOwner", ctx, suite.ownerID).Return(owned, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, suite.ownerID)

	suite.Require().NoError(err)
	suite.Len(accounts, 2)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_OwnerSucceeds() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).
		Return(&domain.Account{AccountID: accountID, OwnerID: suite.ownerID, IsActive: true}, nil).Once()
	suite.mockAccountRepo.On("SetAccountActive", ctx, accountID, false, suite.ownerID, suite.clock.now).
		Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Action == domain.AuditAccountDeactivated && e.ResourceID == accountID
	})).Return().Once()

	err := suite.service.DeactivateAccount(ctx, accountID, suite.ownerID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactiveIsNoop() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).
		Return(&domain.Account{AccountID: accountID, OwnerID: suite.ownerID, IsActive: false}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, accountID, suite.ownerID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountActive")
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_StrangerForbidden() {
	ctx := context.Background()
	accountID := uuid.NewString()
	strangerID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).
		Return(&domain.Account{AccountID: accountID, OwnerID: suite.ownerID, IsActive: true}, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, strangerID).
		Return(&domain.User{UserID: strangerID, Role: domain.RoleUser}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, accountID, strangerID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrForbidden))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountActive")
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
