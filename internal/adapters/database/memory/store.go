// Package memory is an in-process Ledger Store used for local runs and tests.
// Every method holds the store mutex for its whole body, which gives the same
// atomicity the Postgres store gets from single statements and transactions.
package memory

import (
	"sync"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
)

// Store holds transactions and accounts in maps.
type Store struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction // by id
	keys         map[string]string              // idempotency key -> id
	accounts     map[string]*domain.Account     // by user id
	membershipID map[string]string              // membership id -> user id
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]*domain.Transaction),
		keys:         make(map[string]string),
		accounts:     make(map[string]*domain.Account),
		membershipID: make(map[string]string),
	}
}

// Repositories exposes the store through the repository ports.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     s,
		TransactionRepo: s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade     = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*Store)(nil)
)

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	if t.Extra != nil {
		c.Extra = make(map[string]any, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = v
		}
	}
	if t.RepaymentDate != nil {
		d := *t.RepaymentDate
		c.RepaymentDate = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.PaidAt != nil {
		t := *a.PaidAt
		c.PaidAt = &t
	}
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
