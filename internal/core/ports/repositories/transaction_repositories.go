package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// TransactionCursor is the keyset position of the last row of a page.
type TransactionCursor struct {
	Timestamp time.Time
	ID        string
}

// TransactionFilter narrows ListTransactions. An empty UserID lists every owner.
type TransactionFilter struct {
	UserID string
	Limit  int
	After  *TransactionCursor
}

// TransactionReader defines read operations for transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its store-assigned id.
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)

	// FindTransactionByKey retrieves a transaction by its idempotency key.
	FindTransactionByKey(ctx context.Context, key string) (*domain.Transaction, error)

	// ListTransactions returns transactions ordered by timestamp then id, newest first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transactions
type TransactionWriter interface {
	// SaveTransaction inserts a new transaction and assigns its ID.
	// Returns apperrors.ErrDuplicate when the idempotency key already exists.
	SaveTransaction(ctx context.Context, txn *domain.Transaction) error

	// UpdateTransactionStatus overwrites the status of one transaction and returns the new row.
	UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus, now time.Time) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
