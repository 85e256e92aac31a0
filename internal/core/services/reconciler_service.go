package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
)

type balanceReconciler struct {
	BaseService
	accountRepo portsrepo.AccountBalanceWriter
	publisher   portssvc.NotificationPublisher
}

// NewBalanceReconciler creates the reconciler that credits completed deposits.
func NewBalanceReconciler(accountRepo portsrepo.AccountBalanceWriter, publisher portssvc.NotificationPublisher, options ...ServiceOption) portssvc.BalanceReconcilerSvc {
	svc := &balanceReconciler{accountRepo: accountRepo, publisher: publisher}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.BalanceReconcilerSvc = (*balanceReconciler)(nil)

// Apply credits a completed deposit to its owner's savings or collateral balance.
// The store flips the applied tombstone and the balance in one step, so concurrent or repeated
// calls for the same transaction credit it once. Loans and withdrawals have no balance effect.
func (s *balanceReconciler) Apply(ctx context.Context, txn *domain.Transaction) error {
	if txn == nil || !txn.AffectsBalances() {
		return nil
	}

	bucket := txn.DepositBucket()
	account, applied, err := s.accountRepo.ApplyDeposit(ctx, txn.ID, txn.UserID, bucket, txn.Amount, s.Now())
	if err != nil {
		return fmt.Errorf("failed to apply %s to balances: %w", txn.Reference(), err)
	}
	txn.AppliedToBalances = true
	if !applied {
		s.LogDebug(ctx, "Deposit already applied", slog.String("tx", txn.Reference()))
		return nil
	}

	s.LogInfo(ctx, "Deposit applied to balances",
		slog.String("user_id", txn.UserID),
		slog.String("tx", txn.Reference()),
		slog.String("bucket", string(bucket)),
		slog.String("amount", txn.Amount.String()))

	s.publisher.EmitToUser(ctx, account.UserID, domain.EventUserUpdated, domain.BalancesPayload{
		ID:                   account.UserID,
		SavingsBalanceUSD:    account.SavingsBalance.String(),
		CollateralBalanceUSD: account.CollateralBalance.String(),
	})
	return nil
}
