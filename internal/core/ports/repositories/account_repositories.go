package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves the account of a user.
	FindAccountByID(ctx context.Context, userID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// EnsureAccount creates the account row if missing and returns the stored account.
	// Existing balances and membership are never touched.
	EnsureAccount(ctx context.Context, account domain.Account) (*domain.Account, error)

	// GrantMembership marks the user a member. The membership id is only assigned when the
	// account has none; an invalid PaidAmount keeps the stored amount.
	GrantMembership(ctx context.Context, userID string, grant domain.MembershipGrant, now time.Time) (*domain.Account, error)
}

// AccountBalanceWriter applies deposits exactly once.
type AccountBalanceWriter interface {
	// ApplyDeposit flips the applied tombstone of txnID and increments the bucket in one
	// atomic step. applied is false when another caller won the race; the account is then nil.
	ApplyDeposit(ctx context.Context, txnID, userID string, bucket domain.BalanceBucket, amount decimal.Decimal, now time.Time) (account *domain.Account, applied bool, err error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceWriter
}
