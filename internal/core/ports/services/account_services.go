package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount returns the caller's account, creating an empty one on first use.
	GetAccount(ctx context.Context, identity *domain.Identity) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// EnsureAccount makes sure an account row exists for the identity.
	EnsureAccount(ctx context.Context, identity *domain.Identity) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
