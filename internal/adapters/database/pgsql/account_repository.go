package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/models"
	"github.com/SscSPs/vault_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `
	user_id, email, name, role, savings_balance, collateral_balance, is_member,
	membership_id, membership_paid_amount, membership_paid_at, membership_expires_at,
	created_at, updated_at`

const (
	checkViolation       = "23514"
	membershipIDKey      = "accounts_membership_id_key"
	savingsBalanceColumn = "savings_balance"
	collateralColumn     = "collateral_balance"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// FindAccountByID retrieves the account of a user.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account "+userID, err)
	}
	return account, nil
}

// EnsureAccount inserts the account if missing. An existing row only gets blank profile
// fields filled in and is promoted when the incoming role is admin; balances and membership
// are left alone.
func (r *PgxAccountRepository) EnsureAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO accounts (user_id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			email = CASE WHEN accounts.email = '' THEN EXCLUDED.email ELSE accounts.email END,
			name  = CASE WHEN accounts.name = '' THEN EXCLUDED.name ELSE accounts.name END,
			role  = CASE WHEN lower(EXCLUDED.role) = 'admin' THEN EXCLUDED.role ELSE accounts.role END
		RETURNING ` + accountColumns + `;`
	stored, err := scanAccount(r.Pool.QueryRow(ctx, query, account.UserID, account.Email, account.Name, account.Role, now))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to ensure account "+account.UserID, err)
	}
	return stored, nil
}

// GrantMembership sets the membership fields in one statement. COALESCE keeps an existing
// membership id, so concurrent grants for the same user agree on one id.
func (r *PgxAccountRepository) GrantMembership(ctx context.Context, userID string, grant domain.MembershipGrant, now time.Time) (*domain.Account, error) {
	query := `
		UPDATE accounts SET
			is_member = TRUE,
			membership_id = COALESCE(membership_id, $2),
			membership_paid_amount = COALESCE($3, membership_paid_amount),
			membership_paid_at = $4,
			membership_expires_at = $5,
			updated_at = $6
		WHERE user_id = $1
		RETURNING ` + accountColumns + `;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query,
		userID, grant.CandidateID, grant.PaidAmount, grant.PaidAt, grant.ExpiresAt, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		if isUniqueViolation(err, membershipIDKey) {
			return nil, fmt.Errorf("%w: membership id %s", apperrors.ErrDuplicate, grant.CandidateID)
		}
		return nil, apperrors.NewAppError(500, "failed to grant membership to "+userID, err)
	}
	return account, nil
}

// ApplyDeposit flips applied_to_balances with a compare-and-set and increments the bucket
// inside one database transaction. Losing the compare-and-set is not an error.
func (r *PgxAccountRepository) ApplyDeposit(ctx context.Context, txnID, userID string, bucket domain.BalanceBucket, amount decimal.Decimal, now time.Time) (*domain.Account, bool, error) {
	column := savingsBalanceColumn
	if bucket == domain.CollateralBucket {
		column = collateralColumn
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer r.Rollback(ctx, tx) // no-op after commit

	tag, err := tx.Exec(ctx, `
		UPDATE transactions SET applied_to_balances = TRUE, updated_at = $2
		WHERE id = $1 AND applied_to_balances = FALSE;`, txnID, now)
	if err != nil {
		return nil, false, apperrors.NewAppError(500, "failed to mark transaction "+txnID+" applied", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, false, nil
	}

	query := `
		UPDATE accounts SET ` + column + ` = ` + column + ` + $2, updated_at = $3
		WHERE user_id = $1
		RETURNING ` + accountColumns + `;`
	account, err := scanAccount(tx.QueryRow(ctx, query, userID, amount, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
			return nil, false, fmt.Errorf("%w: %s would go negative", apperrors.ErrValidation, column)
		}
		return nil, false, apperrors.NewAppError(500, "failed to credit account "+userID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.UserID, &m.Email, &m.Name, &m.Role, &m.SavingsBalance, &m.CollateralBalance, &m.IsMember,
		&m.MembershipID, &m.MembershipPaidAmount, &m.MembershipPaidAt, &m.MembershipExpiresAt,
		&m.CreatedAt, &m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}
