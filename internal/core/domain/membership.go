package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MembershipDepositThreshold is the minimum deposit amount that can buy a membership.
var MembershipDepositThreshold = decimal.NewFromInt(1000)

const membershipToken = "membership"

// QualifiesForMembership reports whether a completed transaction grants membership:
// either a membership payment, or a deposit of at least the threshold whose description
// mentions "membership" (case-insensitive).
func QualifiesForMembership(tx *Transaction) bool {
	if tx == nil || tx.UserID == "" || !tx.Status.IsCompleted() {
		return false
	}
	if tx.Type.Is(TypeMembership) {
		return true
	}
	return tx.Type.Is(TypeDeposit) &&
		tx.Amount.GreaterThanOrEqual(MembershipDepositThreshold) &&
		strings.Contains(strings.ToLower(tx.Description), membershipToken)
}

// MembershipExpiry is paidAt plus one calendar year.
func MembershipExpiry(paidAt time.Time) time.Time {
	return paidAt.AddDate(1, 0, 0)
}

// NewMembershipGrant derives the grant for a qualifying transaction.
func NewMembershipGrant(tx *Transaction, now time.Time, candidateID string) MembershipGrant {
	paidAt := tx.Timestamp
	if paidAt.IsZero() {
		paidAt = now
	}
	paidAt = paidAt.UTC()
	grant := MembershipGrant{
		PaidAt:       paidAt,
		ExpiresAt:    MembershipExpiry(paidAt),
		CandidateID:  candidateID,
		SourceTxnRef: tx.Reference(),
	}
	if !tx.Amount.IsZero() {
		grant.PaidAmount = decimal.NewNullDecimal(tx.Amount)
	}
	return grant
}
