package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table.
type Transaction struct {
	ID                string          `db:"id"`             // Primary Key (UUID)
	TransactionID     string          `db:"transaction_id"` // Unique idempotency key
	Type              string          `db:"type"`
	Amount            decimal.Decimal `db:"amount"`
	LoanAmount        decimal.Decimal `db:"loan_amount"`
	Currency          string          `db:"currency"`
	Status            string          `db:"status"` // Caller spelling preserved
	Timestamp         time.Time       `db:"timestamp"`
	CollateralBTC     decimal.Decimal `db:"collateral_btc"`
	RepaymentPeriod   int             `db:"repayment_period"`
	RepaymentDate     *time.Time      `db:"repayment_date"` // Nullable
	DueDate           *time.Time      `db:"due_date"`       // Nullable
	InterestRate      decimal.Decimal `db:"interest_rate"`
	Description       string          `db:"description"`
	WithdrawalAddress string          `db:"withdrawal_address"`
	Network           string          `db:"network"`
	UserID            string          `db:"user_id"` // Empty when unowned
	UserName          string          `db:"user_name"`
	UserEmail         string          `db:"user_email"`
	AppliedToBalances bool            `db:"applied_to_balances"`
	Extra             []byte          `db:"extra"` // JSONB
	AuditFields
}
