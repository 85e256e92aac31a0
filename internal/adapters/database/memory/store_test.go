package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveTransaction_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := &domain.Transaction{TransactionID: "TXN-1", Type: domain.TypeDeposit}
	require.NoError(t, store.SaveTransaction(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &domain.Transaction{TransactionID: "TXN-1", Type: domain.TypeDeposit}
	err := store.SaveTransaction(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Empty(t, second.ID)

	found, err := store.FindTransactionByKey(ctx, "TXN-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestSaveTransaction_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const workers = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.SaveTransaction(ctx, &domain.Transaction{TransactionID: "TXN-RACE"})
			if err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	items, err := store.ListTransactions(ctx, portsrepo.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFindTransaction_NotFound(t *testing.T) {
	store := NewStore()
	_, err := store.FindTransactionByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.FindTransactionByKey(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.UpdateTransactionStatus(context.Background(), "missing", domain.StatusCompleted, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txn := &domain.Transaction{TransactionID: "TXN-C", Status: "pending", Extra: map[string]any{"a": 1}}
	require.NoError(t, store.SaveTransaction(ctx, txn))

	txn.Status = "mutated"
	txn.Extra["a"] = 2

	found, err := store.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatus("pending"), found.Status)
	assert.Equal(t, 1, found.Extra["a"])
}

func TestListTransactions_OrderFilterAndCursor(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, owner := range []string{"u1", "u2", "u1", "u1", "u2"} {
		require.NoError(t, store.SaveTransaction(ctx, &domain.Transaction{
			TransactionID: "TXN-" + string(rune('a'+i)),
			UserID:        owner,
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := store.ListTransactions(ctx, portsrepo.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Timestamp.After(all[i].Timestamp))
	}

	own, err := store.ListTransactions(ctx, portsrepo.TransactionFilter{UserID: "u1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "TXN-d", own[0].TransactionID)
	assert.Equal(t, "TXN-c", own[1].TransactionID)

	rest, err := store.ListTransactions(ctx, portsrepo.TransactionFilter{
		UserID: "u1",
		After:  &portsrepo.TransactionCursor{Timestamp: own[1].Timestamp, ID: own[1].ID},
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "TXN-a", rest[0].TransactionID)
}

func TestEnsureAccount_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	acc, err := store.EnsureAccount(ctx, domain.Account{UserID: "u1", Email: "u1@example.com", Role: "user"})
	require.NoError(t, err)
	assert.True(t, acc.SavingsBalance.IsZero())

	_, _, err = store.ApplyDeposit(ctx, "missing", "u1", domain.SavingsBucket, decimal.NewFromInt(1), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	again, err := store.EnsureAccount(ctx, domain.Account{UserID: "u1", Email: "other@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", again.Email)
}

func TestApplyDeposit_AtMostOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, err := store.EnsureAccount(ctx, domain.Account{UserID: "u1"})
	require.NoError(t, err)
	txn := &domain.Transaction{TransactionID: "TXN-D", UserID: "u1", Type: domain.TypeDeposit, Status: "completed", Amount: decimal.RequireFromString("12.34")}
	require.NoError(t, store.SaveTransaction(ctx, txn))

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.ApplyDeposit(ctx, txn.ID, "u1", domain.SavingsBucket, txn.Amount, time.Now())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	acc, err := store.FindAccountByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, acc.SavingsBalance.Equal(decimal.RequireFromString("12.34")), acc.SavingsBalance.String())
	assert.True(t, acc.CollateralBalance.IsZero())

	stored, err := store.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, stored.AppliedToBalances)
}

func TestApplyDeposit_MissingAccountLeavesTombstone(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txn := &domain.Transaction{TransactionID: "TXN-E", UserID: "ghost"}
	require.NoError(t, store.SaveTransaction(ctx, txn))

	_, ok, err := store.ApplyDeposit(ctx, txn.ID, "ghost", domain.CollateralBucket, decimal.NewFromInt(5), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, ok)

	stored, err := store.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, stored.AppliedToBalances)
}

func TestGrantMembership_IDAssignedOnce(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, err := store.EnsureAccount(ctx, domain.Account{UserID: "u1"})
	require.NoError(t, err)

	paid := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	first, err := store.GrantMembership(ctx, "u1", domain.MembershipGrant{
		PaidAmount:  decimal.NewNullDecimal(decimal.NewFromInt(1500)),
		PaidAt:      paid,
		ExpiresAt:   paid.AddDate(1, 0, 0),
		CandidateID: "MBR-1",
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, first.IsMember)
	assert.Equal(t, "MBR-1", first.MembershipID)

	second, err := store.GrantMembership(ctx, "u1", domain.MembershipGrant{
		PaidAt:      paid.AddDate(0, 6, 0),
		ExpiresAt:   paid.AddDate(1, 6, 0),
		CandidateID: "MBR-2",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "MBR-1", second.MembershipID)
	assert.True(t, second.PaidAmount.Equal(decimal.NewFromInt(1500)), "invalid amount keeps prior value")
	assert.Equal(t, paid.AddDate(1, 6, 0), *second.ExpiresAt)

	_, err = store.GrantMembership(ctx, "nobody", domain.MembershipGrant{CandidateID: "MBR-3"}, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnsureAccount_PromotesToAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.EnsureAccount(ctx, domain.Account{UserID: "ops", Role: "user"})
	require.NoError(t, err)

	demoted, err := store.EnsureAccount(ctx, domain.Account{UserID: "ops", Email: "ops@example.com", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, "user", demoted.Role)
	assert.Equal(t, "ops@example.com", demoted.Email, "blank email is filled in")

	promoted, err := store.EnsureAccount(ctx, domain.Account{UserID: "ops", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	kept, err := store.EnsureAccount(ctx, domain.Account{UserID: "ops", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, kept.Role, "a plain ensure never demotes")
}
