package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
)

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByKey(ctx context.Context, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus, now time.Time) (*domain.Transaction, error) {
	args := m.Called(ctx, id, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) EnsureAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GrantMembership(ctx context.Context, userID string, grant domain.MembershipGrant, now time.Time) (*domain.Account, error) {
	args := m.Called(ctx, userID, grant, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyDeposit(ctx context.Context, txnID, userID string, bucket domain.BalanceBucket, amount decimal.Decimal, now time.Time) (*domain.Account, bool, error) {
	args := m.Called(ctx, txnID, userID, bucket, amount, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Account), args.Bool(1), args.Error(2)
}

// MockMembershipEvaluator is a mock type for the MembershipEvaluatorSvc interface
type MockMembershipEvaluator struct {
	mock.Mock
}

func (m *MockMembershipEvaluator) Evaluate(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// MockBalanceReconciler is a mock type for the BalanceReconcilerSvc interface
type MockBalanceReconciler struct {
	mock.Mock
}

func (m *MockBalanceReconciler) Apply(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// MockPaymentNotifier is a mock type for the PaymentNotifierSvc interface
type MockPaymentNotifier struct {
	mock.Mock
}

func (m *MockPaymentNotifier) NotifyPaymentConfirmed(ctx context.Context, txn *domain.Transaction) {
	m.Called(ctx, txn)
}

// MockTransactionCreator is a mock type for the TransactionCreatorSvc interface
type MockTransactionCreator struct {
	mock.Mock
}

func (m *MockTransactionCreator) Create(ctx context.Context, req dto.CreateTransactionRequest, identity *domain.Identity) (*domain.Transaction, error) {
	args := m.Called(ctx, req, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockMailer is a mock type for the Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg portssvc.MailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// emitted is one captured publisher call.
type emitted struct {
	Channel domain.Channel
	Name    string
	Payload any
}

// recordingPublisher captures emitted events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []emitted
}

func (p *recordingPublisher) EmitToUser(_ context.Context, userID, name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, emitted{Channel: domain.UserChannelFor(userID), Name: name, Payload: payload})
}

func (p *recordingPublisher) EmitToAdmins(_ context.Context, name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, emitted{Channel: domain.AdminChannel(), Name: name, Payload: payload})
}

func (p *recordingPublisher) named(name string) []emitted {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []emitted
	for _, e := range p.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// inlineQueue runs submitted tasks immediately, or drops them when full is set.
type inlineQueue struct {
	mu    sync.Mutex
	full  bool
	names []string
	errs  []error
}

func (q *inlineQueue) Submit(name string, fn func(ctx context.Context) error) bool {
	if q.full {
		return false
	}
	err := fn(context.Background())
	q.mu.Lock()
	defer q.mu.Unlock()
	q.names = append(q.names, name)
	q.errs = append(q.errs, err)
	return true
}
