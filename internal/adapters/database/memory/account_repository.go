package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) FindAccountByID(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneAccount(account), nil
}

func (s *Store) EnsureAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.accounts[account.UserID]; ok {
		if existing.Email == "" {
			existing.Email = account.Email
		}
		if existing.Name == "" {
			existing.Name = account.Name
		}
		if (&domain.Identity{Role: account.Role}).IsAdmin() {
			existing.Role = account.Role
		}
		return cloneAccount(existing), nil
	}

	now := time.Now().UTC()
	stored := &domain.Account{
		UserID:            account.UserID,
		Email:             account.Email,
		Name:              account.Name,
		Role:              account.Role,
		SavingsBalance:    decimal.Zero,
		CollateralBalance: decimal.Zero,
		AuditFields:       domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	s.accounts[account.UserID] = stored
	return cloneAccount(stored), nil
}

func (s *Store) GrantMembership(_ context.Context, userID string, grant domain.MembershipGrant, now time.Time) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
	}

	if account.MembershipID == "" {
		if owner, taken := s.membershipID[grant.CandidateID]; taken && owner != userID {
			return nil, fmt.Errorf("%w: membership id %s", apperrors.ErrDuplicate, grant.CandidateID)
		}
		account.MembershipID = grant.CandidateID
		s.membershipID[grant.CandidateID] = userID
	}
	account.IsMember = true
	if grant.PaidAmount.Valid {
		account.PaidAmount = grant.PaidAmount.Decimal
	}
	paidAt, expiresAt := grant.PaidAt, grant.ExpiresAt
	account.PaidAt = &paidAt
	account.ExpiresAt = &expiresAt
	account.LastUpdatedAt = now
	return cloneAccount(account), nil
}

func (s *Store) ApplyDeposit(_ context.Context, txnID, userID string, bucket domain.BalanceBucket, amount decimal.Decimal, now time.Time) (*domain.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[txnID]
	if !ok {
		return nil, false, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, txnID)
	}
	if txn.AppliedToBalances {
		return nil, false, nil
	}
	account, ok := s.accounts[userID]
	if !ok {
		return nil, false, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, userID)
	}

	switch bucket {
	case domain.CollateralBucket:
		next := account.CollateralBalance.Add(amount)
		if next.IsNegative() {
			return nil, false, fmt.Errorf("%w: collateral balance would go negative", apperrors.ErrValidation)
		}
		account.CollateralBalance = next
	default:
		next := account.SavingsBalance.Add(amount)
		if next.IsNegative() {
			return nil, false, fmt.Errorf("%w: savings balance would go negative", apperrors.ErrValidation)
		}
		account.SavingsBalance = next
	}
	account.LastUpdatedAt = now
	txn.AppliedToBalances = true
	txn.LastUpdatedAt = now
	return cloneAccount(account), true, nil
}
