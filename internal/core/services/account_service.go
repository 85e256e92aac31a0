package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
)

const defaultRole = "user"

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates the account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccount(ctx context.Context, identity *domain.Identity) (*domain.Account, error) {
	return s.EnsureAccount(ctx, identity)
}

func (s *accountService) EnsureAccount(ctx context.Context, identity *domain.Identity) (*domain.Account, error) {
	if !identity.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}

	role := identity.Role
	if role == "" {
		role = defaultRole
	}
	account, err := s.accountRepo.EnsureAccount(ctx, domain.Account{
		UserID: identity.ID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   role,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to ensure account", slog.String("user_id", identity.ID))
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}
	return account, nil
}
