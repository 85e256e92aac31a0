//go:build integration

package pgsql

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/migrations"
	"github.com/SscSPs/vault_ledger/pkg/database"
)

// newIntegrationRepos migrates the database named by VAULT_PGSQL_TEST_URL and returns its
// repositories. Tests use fresh uuids for every key so runs do not interfere.
func newIntegrationRepos(t *testing.T) portsrepo.RepositoryProvider {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("VAULT_PGSQL_TEST_URL"))
	if dsn == "" {
		t.Skip("VAULT_PGSQL_TEST_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, database.Migrate(dsn, migrations.FS, logger))

	pool, err := database.NewPgxPool(context.Background(), dsn, true, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRepositoryProvider(pool)
}

func newDeposit(userID string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: "it-" + uuid.NewString(),
		Type:          domain.TypeDeposit,
		Amount:        decimal.RequireFromString("12.34"),
		Currency:      "USD",
		Status:        "Completed",
		Timestamp:     time.Now().UTC().Truncate(time.Microsecond),
		UserID:        userID,
	}
}

func TestIntegration_SaveTransaction_ConcurrentDuplicates(t *testing.T) {
	repos := newIntegrationRepos(t)
	ctx := context.Background()
	key := "it-" + uuid.NewString()

	const callers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		inserted   int
		duplicates int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txn := newDeposit("")
			txn.TransactionID = key
			err := repos.TransactionRepo.SaveTransaction(ctx, txn)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				inserted++
				return
			}
			if assert.ErrorIs(t, err, apperrors.ErrDuplicate) {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	assert.Equal(t, callers-1, duplicates)

	stored, err := repos.TransactionRepo.FindTransactionByKey(ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
}

func TestIntegration_ApplyDeposit_AtMostOnce(t *testing.T) {
	repos := newIntegrationRepos(t)
	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	_, err := repos.AccountRepo.EnsureAccount(ctx, domain.Account{UserID: userID, Role: "user"})
	require.NoError(t, err)
	txn := newDeposit(userID)
	require.NoError(t, repos.TransactionRepo.SaveTransaction(ctx, txn))

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repos.AccountRepo.ApplyDeposit(ctx, txn.ID, userID, domain.SavingsBucket, txn.Amount, time.Now().UTC())
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
	account, err := repos.AccountRepo.FindAccountByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, account.SavingsBalance.Equal(decimal.RequireFromString("12.34")), account.SavingsBalance.String())

	stored, err := repos.TransactionRepo.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.True(t, stored.AppliedToBalances)
}

func TestIntegration_ApplyDeposit_MissingAccountRollsBack(t *testing.T) {
	repos := newIntegrationRepos(t)
	ctx := context.Background()

	txn := newDeposit("it-" + uuid.NewString())
	require.NoError(t, repos.TransactionRepo.SaveTransaction(ctx, txn))

	_, ok, err := repos.AccountRepo.ApplyDeposit(ctx, txn.ID, txn.UserID, domain.SavingsBucket, txn.Amount, time.Now().UTC())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, ok)

	stored, err := repos.TransactionRepo.FindTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.False(t, stored.AppliedToBalances, "the compare-and-set is undone with the failed credit")
}

func TestIntegration_GrantMembership_KeepsFirstID(t *testing.T) {
	repos := newIntegrationRepos(t)
	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	_, err := repos.AccountRepo.EnsureAccount(ctx, domain.Account{UserID: userID, Role: "user"})
	require.NoError(t, err)

	paid := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	firstID := "MBR-" + uuid.NewString()
	first, err := repos.AccountRepo.GrantMembership(ctx, userID, domain.MembershipGrant{
		PaidAmount:  decimal.NewNullDecimal(decimal.NewFromInt(1500)),
		PaidAt:      paid,
		ExpiresAt:   paid.AddDate(1, 0, 0),
		CandidateID: firstID,
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, first.IsMember)
	assert.Equal(t, firstID, first.MembershipID)

	second, err := repos.AccountRepo.GrantMembership(ctx, userID, domain.MembershipGrant{
		PaidAt:      paid.AddDate(0, 6, 0),
		ExpiresAt:   paid.AddDate(1, 6, 0),
		CandidateID: "MBR-" + uuid.NewString(),
	}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, firstID, second.MembershipID)
	assert.True(t, second.PaidAmount.Equal(decimal.NewFromInt(1500)))
	require.NotNil(t, second.ExpiresAt)
	assert.True(t, paid.AddDate(1, 6, 0).Equal(*second.ExpiresAt))
}

func TestIntegration_EnsureAccount_PromotesToAdmin(t *testing.T) {
	repos := newIntegrationRepos(t)
	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	_, err := repos.AccountRepo.EnsureAccount(ctx, domain.Account{UserID: userID, Role: "user"})
	require.NoError(t, err)

	promoted, err := repos.AccountRepo.EnsureAccount(ctx, domain.Account{UserID: userID, Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	kept, err := repos.AccountRepo.EnsureAccount(ctx, domain.Account{UserID: userID, Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, kept.Role)
}
