package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership describes the paid membership attached to an account.
type Membership struct {
	IsMember     bool            `json:"isMember"`
	MembershipID string          `json:"membershipId,omitempty"` // assigned once, never reassigned
	PaidAmount   decimal.Decimal `json:"membershipPaidAmount"`
	PaidAt       *time.Time      `json:"membershipPaidAt,omitempty"`
	ExpiresAt    *time.Time      `json:"membershipExpiresAt,omitempty"`
}

// Account is the per-user balance and membership record.
type Account struct {
	UserID            string          `json:"id"`
	Email             string          `json:"email"`
	Name              string          `json:"name"`
	Role              string          `json:"role"`
	SavingsBalance    decimal.Decimal `json:"savingsBalanceUSD"`
	CollateralBalance decimal.Decimal `json:"collateralBalanceUSD"`
	Membership
	AuditFields
}

// BalanceBucket selects which account balance a deposit lands in.
type BalanceBucket string

const (
	SavingsBucket    BalanceBucket = "savings"
	CollateralBucket BalanceBucket = "collateral"
)

// MembershipGrant is the set of fields written when a qualifying transaction completes.
// PaidAmount is optional: when not valid the stored amount is kept.
type MembershipGrant struct {
	PaidAmount   decimal.NullDecimal
	PaidAt       time.Time
	ExpiresAt    time.Time
	CandidateID  string // used only when the account has no membership id yet
	SourceTxnRef string
}
