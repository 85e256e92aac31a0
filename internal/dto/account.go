package dto

import (
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse defines the data returned for the caller's account.
type AccountResponse struct {
	ID                   string          `json:"id"`
	Email                string          `json:"email"`
	Name                 string          `json:"name"`
	Role                 string          `json:"role"`
	SavingsBalanceUSD    decimal.Decimal `json:"savingsBalanceUSD"`
	CollateralBalanceUSD decimal.Decimal `json:"collateralBalanceUSD"`
	IsMember             bool            `json:"isMember"`
	MembershipID         string          `json:"membershipId,omitempty"`
	MembershipPaidAmount decimal.Decimal `json:"membershipPaidAmount"`
	MembershipPaidAt     *time.Time      `json:"membershipPaidAt,omitempty"`
	MembershipExpiresAt  *time.Time      `json:"membershipExpiresAt,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		ID:                   acc.UserID,
		Email:                acc.Email,
		Name:                 acc.Name,
		Role:                 acc.Role,
		SavingsBalanceUSD:    acc.SavingsBalance,
		CollateralBalanceUSD: acc.CollateralBalance,
		IsMember:             acc.IsMember,
		MembershipID:         acc.MembershipID,
		MembershipPaidAmount: acc.PaidAmount,
		MembershipPaidAt:     acc.PaidAt,
		MembershipExpiresAt:  acc.ExpiresAt,
		CreatedAt:            acc.CreatedAt,
	}
}
