package dto

import (
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data accepted when recording a transaction.
// Unrecognised JSON fields are collected into Extra by the handler.
type CreateTransactionRequest struct {
	TransactionID     string          `json:"transactionId"`
	Type              string          `json:"type" binding:"omitempty,txtype"`
	Amount            decimal.Decimal `json:"amount"`
	LoanAmount        decimal.Decimal `json:"loanAmount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Timestamp         *time.Time      `json:"timestamp"`
	CollateralBTC     decimal.Decimal `json:"collateralBTC"`
	RepaymentPeriod   int             `json:"repaymentPeriod" binding:"min=0"`
	RepaymentDate     *time.Time      `json:"repaymentDate"`
	DueDate           *time.Time      `json:"dueDate"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	Description       string          `json:"description"`
	WithdrawalAddress string          `json:"withdrawalAddress"`
	Network           string          `json:"network"`
	UserID            string          `json:"userId"`
	UserName          string          `json:"userName"`
	UserEmail         string          `json:"userEmail"`
	Extra             map[string]any  `json:"-"`
}

// createTransactionFields are the JSON keys bound into CreateTransactionRequest.
var createTransactionFields = map[string]struct{}{
	"transactionId": {}, "type": {}, "amount": {}, "loanAmount": {}, "currency": {},
	"status": {}, "timestamp": {}, "collateralBTC": {}, "repaymentPeriod": {},
	"repaymentDate": {}, "dueDate": {}, "interestRate": {}, "description": {},
	"withdrawalAddress": {}, "network": {}, "userId": {}, "userName": {}, "userEmail": {},
}

// CollectExtras returns the keys of raw that CreateTransactionRequest does not bind.
func CollectExtras(raw map[string]any) map[string]any {
	var extras map[string]any
	for k, v := range raw {
		if _, known := createTransactionFields[k]; known {
			continue
		}
		if extras == nil {
			extras = make(map[string]any)
		}
		extras[k] = v
	}
	return extras
}

// UpdateTransactionStatusRequest is the body of PATCH /transactions/:id/status.
type UpdateTransactionStatusRequest struct {
	Status string `json:"status"`
}

// ListTransactionsParams defines the query parameters for listing transactions.
type ListTransactionsParams struct {
	UserID    string `form:"userId"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	NextToken string `form:"nextToken"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Items     []domain.Transaction `json:"items"`
	NextToken *string              `json:"nextToken,omitempty"`
}
