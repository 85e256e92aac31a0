package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/models"
	"github.com/SscSPs/vault_ledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `
	id, transaction_id, type, amount, loan_amount, currency, status, "timestamp",
	collateral_btc, repayment_period, repayment_date, due_date, interest_rate,
	description, withdrawal_address, network, user_id, user_name, user_email,
	applied_to_balances, extra, created_at, updated_at`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction inserts txn and assigns its id. The unique index on transaction_id makes
// concurrent inserts of the same key resolve to one row; losers get ErrDuplicate.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	now := time.Now().UTC()
	candidate := *txn
	candidate.ID = uuid.NewString()
	candidate.CreatedAt = now
	candidate.LastUpdatedAt = now

	m, err := mapping.ToModelTransaction(candidate)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id;
	`
	var insertedID string
	err = r.Pool.QueryRow(ctx, query,
		m.ID, m.TransactionID, m.Type, m.Amount, m.LoanAmount, m.Currency, m.Status, m.Timestamp,
		m.CollateralBTC, m.RepaymentPeriod, m.RepaymentDate, m.DueDate, m.InterestRate,
		m.Description, m.WithdrawalAddress, m.Network, m.UserID, m.UserName, m.UserEmail,
		m.AppliedToBalances, m.Extra, m.CreatedAt, m.LastUpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}

	txn.ID = insertedID
	txn.CreatedAt = now
	txn.LastUpdatedAt = now
	return nil
}

// FindTransactionByID retrieves a transaction by its id.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1;`
	return r.findOne(ctx, query, id)
}

// FindTransactionByKey retrieves a transaction by its idempotency key.
func (r *PgxTransactionRepository) FindTransactionByKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	return r.findOne(ctx, query, key)
}

func (r *PgxTransactionRepository) findOne(ctx context.Context, query string, arg string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+arg, err)
	}
	return txn, nil
}

// UpdateTransactionStatus overwrites the status in a single statement.
func (r *PgxTransactionRepository) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus, now time.Time) (*domain.Transaction, error) {
	query := `
		UPDATE transactions SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + transactionColumns + `;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, id, string(status), now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to update status of transaction "+id, err)
	}
	return txn, nil
}

// ListTransactions returns rows newest first using keyset pagination on ("timestamp", id).
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, "user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.After != nil {
		args = append(args, filter.After.Timestamp, filter.After.ID)
		conds = append(conds, fmt.Sprintf(`("timestamp", id) < ($%d, $%d)`, len(args)-1, len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(` ORDER BY "timestamp" DESC, id DESC`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list transactions", err)
	}
	defer rows.Close()

	items := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction", err)
		}
		items = append(items, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate transactions", err)
	}
	return items, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.Type, &m.Amount, &m.LoanAmount, &m.Currency, &m.Status, &m.Timestamp,
		&m.CollateralBTC, &m.RepaymentPeriod, &m.RepaymentDate, &m.DueDate, &m.InterestRate,
		&m.Description, &m.WithdrawalAddress, &m.Network, &m.UserID, &m.UserName, &m.UserEmail,
		&m.AppliedToBalances, &m.Extra, &m.CreatedAt, &m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn, err := mapping.ToDomainTransaction(m)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
