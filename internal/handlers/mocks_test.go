package handlers_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, req dto.CreateTransactionRequest, identity *domain.Identity) (*domain.Transaction, error) {
	args := m.Called(ctx, req, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateStatus(ctx context.Context, ref string, status domain.TransactionStatus, identity *domain.Identity) (*domain.Transaction, error) {
	args := m.Called(ctx, ref, status, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, params dto.ListTransactionsParams, identity *domain.Identity) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, params, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) Get(ctx context.Context, ref string, identity *domain.Identity) (*domain.Transaction, error) {
	args := m.Called(ctx, ref, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, identity *domain.Identity) (*domain.Account, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) EnsureAccount(ctx context.Context, identity *domain.Identity) (*domain.Account, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock WebhookService ---
type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) IngestCryptoDeposit(ctx context.Context, req dto.CryptoWebhookRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockWebhookService) VerifySignature(body []byte, signature string) error {
	args := m.Called(body, signature)
	return args.Error(0)
}

var _ portssvc.WebhookSvc = (*MockWebhookService)(nil)

// fakeEventStream hands out a pre-filled channel that closes after the queued events.
type fakeEventStream struct {
	mu         sync.Mutex
	queued     []domain.Event
	subscribed [][]domain.Channel
	cancelled  int
}

func (f *fakeEventStream) Subscribe(channels ...domain.Channel) (<-chan domain.Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, channels)
	ch := make(chan domain.Event, len(f.queued))
	for _, evt := range f.queued {
		ch <- evt
	}
	close(ch)
	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancelled++
	}
}

var _ portssvc.EventStreamSvc = (*fakeEventStream)(nil)
