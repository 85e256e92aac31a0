package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
)

func (s *Store) SaveTransaction(_ context.Context, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[txn.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
	}

	now := time.Now().UTC()
	txn.ID = uuid.NewString()
	txn.CreatedAt = now
	txn.LastUpdatedAt = now

	s.transactions[txn.ID] = cloneTransaction(txn)
	s.keys[txn.TransactionID] = txn.ID
	return nil
}

func (s *Store) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneTransaction(txn), nil
}

func (s *Store) FindTransactionByKey(_ context.Context, key string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.keys[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneTransaction(s.transactions[id]), nil
}

func (s *Store) UpdateTransactionStatus(_ context.Context, id string, status domain.TransactionStatus, now time.Time) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn.Status = status
	txn.LastUpdatedAt = now
	return cloneTransaction(txn), nil
}

func (s *Store) ListTransactions(_ context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Transaction, 0)
	for _, txn := range s.transactions {
		if filter.UserID != "" && txn.UserID != filter.UserID {
			continue
		}
		if filter.After != nil && !before(txn, filter.After) {
			continue
		}
		items = append(items, *cloneTransaction(txn))
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID > items[j].ID
	})

	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

// before reports whether txn sorts after the cursor in (timestamp DESC, id DESC) order.
func before(txn *domain.Transaction, c *portsrepo.TransactionCursor) bool {
	if txn.Timestamp.Equal(c.Timestamp) {
		return txn.ID < c.ID
	}
	return txn.Timestamp.Before(c.Timestamp)
}
