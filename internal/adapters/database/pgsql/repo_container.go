package pgsql

import (
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres Ledger Store.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
	}
}
