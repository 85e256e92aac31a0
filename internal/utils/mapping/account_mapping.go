package mapping

import (
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		UserID:            m.UserID,
		Email:             m.Email,
		Name:              m.Name,
		Role:              m.Role,
		SavingsBalance:    m.SavingsBalance,
		CollateralBalance: m.CollateralBalance,
		Membership: domain.Membership{
			IsMember:     m.IsMember,
			MembershipID: m.MembershipID.String,
			PaidAmount:   m.MembershipPaidAmount,
			PaidAt:       utcPtr(m.MembershipPaidAt),
			ExpiresAt:    utcPtr(m.MembershipExpiresAt),
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
