package mapping

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) (models.Transaction, error) {
	extra := []byte("{}")
	if len(d.Extra) > 0 {
		raw, err := json.Marshal(d.Extra)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("failed to encode extra fields: %w", err)
		}
		extra = raw
	}
	return models.Transaction{
		ID:                d.ID,
		TransactionID:     d.TransactionID,
		Type:              string(d.Type),
		Amount:            d.Amount,
		LoanAmount:        d.LoanAmount,
		Currency:          d.Currency,
		Status:            string(d.Status),
		Timestamp:         d.Timestamp,
		CollateralBTC:     d.CollateralBTC,
		RepaymentPeriod:   d.RepaymentPeriod,
		RepaymentDate:     d.RepaymentDate,
		DueDate:           d.DueDate,
		InterestRate:      d.InterestRate,
		Description:       d.Description,
		WithdrawalAddress: d.WithdrawalAddress,
		Network:           d.Network,
		UserID:            d.UserID,
		UserName:          d.UserName,
		UserEmail:         d.UserEmail,
		AppliedToBalances: d.AppliedToBalances,
		Extra:             extra,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}, nil
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	var extra map[string]any
	if len(m.Extra) > 0 {
		if err := json.Unmarshal(m.Extra, &extra); err != nil {
			return domain.Transaction{}, fmt.Errorf("failed to decode extra fields of %s: %w", m.ID, err)
		}
		if len(extra) == 0 {
			extra = nil
		}
	}
	return domain.Transaction{
		ID:                m.ID,
		TransactionID:     m.TransactionID,
		Type:              domain.TransactionType(m.Type),
		Amount:            m.Amount,
		LoanAmount:        m.LoanAmount,
		Currency:          m.Currency,
		Status:            domain.TransactionStatus(m.Status),
		Timestamp:         m.Timestamp.UTC(),
		CollateralBTC:     m.CollateralBTC,
		RepaymentPeriod:   m.RepaymentPeriod,
		RepaymentDate:     utcPtr(m.RepaymentDate),
		DueDate:           utcPtr(m.DueDate),
		InterestRate:      m.InterestRate,
		Description:       m.Description,
		WithdrawalAddress: m.WithdrawalAddress,
		Network:           m.Network,
		UserID:            m.UserID,
		UserName:          m.UserName,
		UserEmail:         m.UserEmail,
		AppliedToBalances: m.AppliedToBalances,
		Extra:             extra,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
