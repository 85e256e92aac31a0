package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a row of the accounts table.
type Account struct {
	UserID               string          `db:"user_id"`
	Email                string          `db:"email"`
	Name                 string          `db:"name"`
	Role                 string          `db:"role"`
	SavingsBalance       decimal.Decimal `db:"savings_balance"`
	CollateralBalance    decimal.Decimal `db:"collateral_balance"`
	IsMember             bool            `db:"is_member"`
	MembershipID         sql.NullString  `db:"membership_id"` // Nullable, unique
	MembershipPaidAmount decimal.Decimal `db:"membership_paid_amount"`
	MembershipPaidAt     *time.Time      `db:"membership_paid_at"`
	MembershipExpiresAt  *time.Time      `db:"membership_expires_at"`
	AuditFields
}
