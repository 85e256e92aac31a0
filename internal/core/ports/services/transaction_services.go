package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/dto"
)

// TransactionCreatorSvc records new transactions.
type TransactionCreatorSvc interface {
	// Create records a transaction. A repeated idempotency key returns the stored record.
	// identity may be nil for trusted internal callers such as webhooks.
	Create(ctx context.Context, req dto.CreateTransactionRequest, identity *domain.Identity) (*domain.Transaction, error)
}

// TransactionStatusSvc changes the lifecycle status of transactions.
type TransactionStatusSvc interface {
	// UpdateStatus sets the status of the transaction with the given id or key. Admin only.
	UpdateStatus(ctx context.Context, ref string, status domain.TransactionStatus, identity *domain.Identity) (*domain.Transaction, error)
}

// TransactionReaderSvc reads transactions visible to the caller.
type TransactionReaderSvc interface {
	// List returns one page of transactions, newest first.
	List(ctx context.Context, params dto.ListTransactionsParams, identity *domain.Identity) (*dto.ListTransactionsResponse, error)

	// Get returns one transaction by id or key. Owners and admins only.
	Get(ctx context.Context, ref string, identity *domain.Identity) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionCreatorSvc
	TransactionStatusSvc
	TransactionReaderSvc
}

// BalanceReconcilerSvc applies completed deposits to account balances.
type BalanceReconcilerSvc interface {
	// Apply credits the owner's balance at most once per transaction.
	Apply(ctx context.Context, txn *domain.Transaction) error
}

// MembershipEvaluatorSvc grants memberships for qualifying payments.
type MembershipEvaluatorSvc interface {
	// Evaluate grants or refreshes membership when txn qualifies.
	Evaluate(ctx context.Context, txn *domain.Transaction) error
}

// PaymentNotifierSvc tells users their payment went through.
type PaymentNotifierSvc interface {
	// NotifyPaymentConfirmed queues a confirmation email. It never blocks on delivery.
	NotifyPaymentConfirmed(ctx context.Context, txn *domain.Transaction)
}

// WebhookSvc ingests payment provider callbacks.
type WebhookSvc interface {
	// IngestCryptoDeposit turns an on-chain deposit callback into a transaction.
	IngestCryptoDeposit(ctx context.Context, req dto.CryptoWebhookRequest) (*domain.Transaction, error)

	// VerifySignature checks the callback signature over the raw body.
	VerifySignature(body []byte, signature string) error
}
