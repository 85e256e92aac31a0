package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/utils"
)

type membershipEvaluator struct {
	BaseService
	accountRepo portsrepo.AccountWriter
	publisher   portssvc.NotificationPublisher
	newID       func() (string, error)
}

// NewMembershipEvaluator creates the evaluator that grants memberships for qualifying payments.
func NewMembershipEvaluator(accountRepo portsrepo.AccountWriter, publisher portssvc.NotificationPublisher, options ...ServiceOption) portssvc.MembershipEvaluatorSvc {
	svc := &membershipEvaluator{accountRepo: accountRepo, publisher: publisher}
	svc.newID = func() (string, error) { return utils.NewMembershipID(svc.Now()) }
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.MembershipEvaluatorSvc = (*membershipEvaluator)(nil)

// Evaluate grants membership when txn is a completed membership payment or a qualifying deposit.
// Re-running it for the same transaction rewrites the same values and keeps the membership id.
func (s *membershipEvaluator) Evaluate(ctx context.Context, txn *domain.Transaction) error {
	if !domain.QualifiesForMembership(txn) {
		return nil
	}

	candidateID, err := s.newID()
	if err != nil {
		return fmt.Errorf("failed to generate membership id: %w", err)
	}

	grant := domain.NewMembershipGrant(txn, s.Now(), candidateID)
	account, err := s.accountRepo.GrantMembership(ctx, txn.UserID, grant, s.Now())
	if err != nil {
		return fmt.Errorf("failed to grant membership to %s: %w", txn.UserID, err)
	}

	s.LogInfo(ctx, "Membership granted",
		slog.String("user_id", account.UserID),
		slog.String("membership_id", account.MembershipID),
		slog.String("tx", grant.SourceTxnRef))

	s.publisher.EmitToUser(ctx, account.UserID, domain.EventUserUpdated, domain.MembershipPayload{
		ID:                   account.UserID,
		IsMember:             account.IsMember,
		MembershipPaidAmount: account.PaidAmount.String(),
		MembershipPaidAt:     account.PaidAt,
		MembershipExpiresAt:  account.ExpiresAt,
		MembershipID:         account.MembershipID,
	})
	return nil
}
