package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business kind of a transaction. Unknown kinds are stored verbatim.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeLoan       TransactionType = "loan"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeMembership TransactionType = "membership"
)

// Normalize lower-cases and trims the type for comparisons.
func (t TransactionType) Normalize() TransactionType {
	return TransactionType(strings.ToLower(strings.TrimSpace(string(t))))
}

// Is reports whether t matches other, ignoring case.
func (t TransactionType) Is(other TransactionType) bool {
	return t.Normalize() == other.Normalize()
}

// TransactionStatus is the caller-visible status text. The stored value keeps the caller's
// spelling ("Completed"), comparisons go through Normalize.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusCompleted TransactionStatus = "completed"
	StatusComplete  TransactionStatus = "complete"
	StatusSuccess   TransactionStatus = "success"
	StatusApproved  TransactionStatus = "approved"
	StatusFailed    TransactionStatus = "failed"
	StatusRejected  TransactionStatus = "rejected"
	StatusCancelled TransactionStatus = "cancelled"
)

var completedStatuses = map[TransactionStatus]struct{}{
	StatusCompleted: {},
	StatusConfirmed: {},
	StatusComplete:  {},
}

var approvalStatuses = map[TransactionStatus]struct{}{
	StatusCompleted: {},
	StatusConfirmed: {},
	StatusComplete:  {},
	StatusSuccess:   {},
	StatusApproved:  {},
}

// Normalize lower-cases and trims the status.
func (s TransactionStatus) Normalize() TransactionStatus {
	return TransactionStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// IsCompleted reports membership in the completed set {completed, confirmed, complete}.
// Only these statuses drive balance and membership reconciliation.
func (s TransactionStatus) IsCompleted() bool {
	_, ok := completedStatuses[s.Normalize()]
	return ok
}

// IsApproval reports whether an admin status change should be audited as an approval.
func (s TransactionStatus) IsApproval() bool {
	_, ok := approvalStatuses[s.Normalize()]
	return ok
}

// Known reports whether the status is one of the enumerated constants.
func (s TransactionStatus) Known() bool {
	switch s.Normalize() {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusComplete, StatusSuccess,
		StatusApproved, StatusFailed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// TransitionPolicy decides whether a status change is allowed.
type TransitionPolicy func(from, to TransactionStatus) error

// AnyTransition allows every status to follow every other status.
func AnyTransition(_, _ TransactionStatus) error { return nil }

// Transaction is a single ledger event owned by one user.
type Transaction struct {
	ID                string            `json:"id"`            // store-assigned
	TransactionID     string            `json:"transactionId"` // idempotency key
	Type              TransactionType   `json:"type"`
	Amount            decimal.Decimal   `json:"amount"`
	LoanAmount        decimal.Decimal   `json:"loanAmount"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	Timestamp         time.Time         `json:"timestamp"`
	CollateralBTC     decimal.Decimal   `json:"collateralBTC"`
	RepaymentPeriod   int               `json:"repaymentPeriod"`
	RepaymentDate     *time.Time        `json:"repaymentDate,omitempty"`
	DueDate           *time.Time        `json:"dueDate,omitempty"`
	InterestRate      decimal.Decimal   `json:"interestRate"`
	Description       string            `json:"description"`
	WithdrawalAddress string            `json:"withdrawalAddress"`
	Network           string            `json:"network"`
	UserID            string            `json:"userId"`
	UserName          string            `json:"userName"`
	UserEmail         string            `json:"userEmail"`
	AppliedToBalances bool              `json:"appliedToBalances"`
	Extra             map[string]any    `json:"extra,omitempty"`
	AuditFields
}

// Reference is the label used in logs and emails: the idempotency key, else the system id.
func (t *Transaction) Reference() string {
	if t.TransactionID != "" {
		return t.TransactionID
	}
	return t.ID
}

// HasCollateral reports a positive collateral marker.
func (t *Transaction) HasCollateral() bool {
	return t.CollateralBTC.GreaterThan(decimal.Zero)
}

// DepositBucket returns the balance a completed deposit credits.
func (t *Transaction) DepositBucket() BalanceBucket {
	if t.HasCollateral() {
		return CollateralBucket
	}
	return SavingsBucket
}

// AffectsBalances reports whether the reconciler has anything to do for t.
// Only deposits carry a balance effect.
func (t *Transaction) AffectsBalances() bool {
	return !t.AppliedToBalances && t.Status.IsCompleted() && t.Type.Is(TypeDeposit) && t.UserID != ""
}

// NormalizeLoan fills the derived loan fields. The amount comes from LoanAmount when it is
// positive; repayment and due dates are set once from RepaymentPeriod days after the timestamp.
func (t *Transaction) NormalizeLoan() {
	if !t.Type.Is(TypeLoan) {
		return
	}
	if t.LoanAmount.GreaterThan(decimal.Zero) {
		t.Amount = t.LoanAmount
	}
	if t.RepaymentPeriod <= 0 {
		return
	}
	due := t.Timestamp.Add(time.Duration(t.RepaymentPeriod) * 24 * time.Hour)
	if t.RepaymentDate == nil {
		d := due
		t.RepaymentDate = &d
	}
	if t.DueDate == nil {
		d := due
		t.DueDate = &d
	}
}
