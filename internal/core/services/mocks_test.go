package services_test

import (
	"context"
	"time"

	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

// Ensure MockTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindReversalOf(ctx context.Context, originalID string) (*domain.Transaction, error) {
	args := m.Called(ctx, originalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountsInWindow(ctx context.Context, accountID string, types []domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, types, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) PendingOutgoing(ctx context.Context, accountID string) (decimal.Decimal, int, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransfer(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveReversal(ctx context.Context, reversal domain.Transaction) error {
	args := m.Called(ctx, reversal)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

// Ensure MockAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, active, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, minBalance *decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, delta, minBalance, userID, now)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock AuditSvc ---
type MockAuditSvc struct {
	mock.Mock
}

var _ portssvc.AuditSvcFacade = (*MockAuditSvc)(nil)

func (m *MockAuditSvc) Record(ctx context.Context, entry domain.AuditEntry) {
	m.Called(ctx, entry)
}

// --- Mock LimitSvc ---
type MockLimitSvc struct {
	mock.Mock
}

var _ portssvc.LimitSvcFacade = (*MockLimitSvc)(nil)

func (m *MockLimitSvc) LimitStatuses(ctx context.Context, account domain.Account, txnType domain.TransactionType) ([]domain.LimitStatus, error) {
	args := m.Called(ctx, account, txnType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LimitStatus), args.Error(1)
}

// --- Mock NotificationDispatcher ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.NotificationDispatcher = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, userID string, event string, payload any) {
	m.Called(ctx, userID, event, payload)
}

// --- Fake Clock ---
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }
