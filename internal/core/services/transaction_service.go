package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/SscSPs/vault_ledger/internal/utils/pagination"
)

const (
	// MaxListLimit caps a single page of transactions.
	MaxListLimit = 200
)

// systemFields are caller-supplied keys that must never reach the store.
var systemFields = []string{"id", "_id", "__v"}

type transactionService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	membership  portssvc.MembershipEvaluatorSvc
	reconciler  portssvc.BalanceReconcilerSvc
	publisher   portssvc.NotificationPublisher
	notifier    portssvc.PaymentNotifierSvc
	policy      domain.TransitionPolicy
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithPaymentNotifier sends confirmation emails when an admin completes a transaction.
func WithPaymentNotifier(notifier portssvc.PaymentNotifierSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.notifier = notifier
	}
}

// WithTransitionPolicy restricts which status changes UpdateStatus accepts.
func WithTransitionPolicy(policy domain.TransitionPolicy) TransactionServiceOption {
	return func(s *transactionService) {
		s.policy = policy
	}
}

// WithTransactionClock overrides the clock used for defaults and audit lines.
func WithTransactionClock(now func() time.Time) TransactionServiceOption {
	return func(s *transactionService) {
		s.now = now
	}
}

// NewTransactionService creates the transaction lifecycle engine.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	membership portssvc.MembershipEvaluatorSvc,
	reconciler portssvc.BalanceReconcilerSvc,
	publisher portssvc.NotificationPublisher,
	options ...TransactionServiceOption,
) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		membership:  membership,
		reconciler:  reconciler,
		publisher:   publisher,
		policy:      domain.AnyTransition,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// Create records a transaction. Resubmitting an idempotency key returns the stored record
// without error and without a second transaction:created event.
func (s *transactionService) Create(ctx context.Context, req dto.CreateTransactionRequest, identity *domain.Identity) (*domain.Transaction, error) {
	txType := domain.TransactionType(strings.TrimSpace(req.Type))
	if txType.Is(domain.TypeLoan) {
		if err := s.authorizeLoan(ctx, identity); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	txn, err := s.buildTransaction(req, identity, now)
	if err != nil {
		return nil, err
	}

	if identity.Authenticated() {
		if _, err := s.accountRepo.EnsureAccount(ctx, domain.Account{
			UserID: identity.ID,
			Email:  identity.Email,
			Name:   identity.Name,
			Role:   roleOrDefault(identity.Role),
		}); err != nil {
			s.LogError(ctx, err, "Failed to ensure caller account", slog.String("user_id", identity.ID))
			return nil, fmt.Errorf("failed to ensure caller account: %w", err)
		}
	}

	inserted := true
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save transaction", slog.String("tx", txn.TransactionID))
			return nil, fmt.Errorf("failed to save transaction: %w", err)
		}
		existing, lookupErr := s.txnRepo.FindTransactionByKey(ctx, txn.TransactionID)
		if lookupErr != nil {
			s.LogError(ctx, lookupErr, "Duplicate transaction key but lookup failed", slog.String("tx", txn.TransactionID))
			return nil, fmt.Errorf("failed to load existing transaction %s: %w", txn.TransactionID, lookupErr)
		}
		s.LogInfo(ctx, "Transaction key already recorded, returning existing", slog.String("tx", txn.TransactionID))
		txn = existing
		inserted = false
	}

	if inserted {
		s.broadcast(ctx, domain.EventTransactionCreated, txn)
	}
	if txn.Status.IsCompleted() {
		s.reconcile(ctx, txn)
	}
	return txn, nil
}

// authorizeLoan allows loan requests only from authenticated members.
func (s *transactionService) authorizeLoan(ctx context.Context, identity *domain.Identity) error {
	if !identity.Authenticated() {
		return fmt.Errorf("%w: loan requests require authentication", apperrors.ErrUnauthorized)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: Loan access restricted to members", apperrors.ErrForbidden)
		}
		return fmt.Errorf("failed to load caller account: %w", err)
	}
	if !account.IsMember {
		return fmt.Errorf("%w: Loan access restricted to members", apperrors.ErrForbidden)
	}
	return nil
}

func (s *transactionService) buildTransaction(req dto.CreateTransactionRequest, identity *domain.Identity, now time.Time) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		TransactionID:     strings.TrimSpace(req.TransactionID),
		Type:              domain.TransactionType(strings.TrimSpace(req.Type)),
		Amount:            req.Amount,
		LoanAmount:        req.LoanAmount,
		Currency:          req.Currency,
		Status:            domain.TransactionStatus(strings.TrimSpace(req.Status)),
		Timestamp:         now,
		CollateralBTC:     req.CollateralBTC,
		RepaymentPeriod:   req.RepaymentPeriod,
		RepaymentDate:     req.RepaymentDate,
		DueDate:           req.DueDate,
		InterestRate:      req.InterestRate,
		Description:       req.Description,
		WithdrawalAddress: req.WithdrawalAddress,
		Network:           req.Network,
		UserID:            req.UserID,
		UserName:          req.UserName,
		UserEmail:         req.UserEmail,
		Extra:             stripSystemFields(req.Extra),
	}
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		txn.Timestamp = req.Timestamp.UTC()
	}

	if identity != nil {
		if txn.UserID == "" {
			txn.UserID = identity.ID
		}
		if txn.UserEmail == "" {
			txn.UserEmail = identity.Email
		}
		if txn.UserName == "" {
			txn.UserName = identity.Name
		}
	}

	if txn.TransactionID == "" {
		key, err := utils.NewTransactionKey(now)
		if err != nil {
			return nil, fmt.Errorf("failed to generate transaction key: %w", err)
		}
		txn.TransactionID = key
	}
	if txn.Status == "" {
		txn.Status = domain.StatusPending
	}
	txn.NormalizeLoan()
	return txn, nil
}

// UpdateStatus lets an admin move a transaction to any status. Completing it runs membership
// and balance reconciliation and queues a confirmation email.
func (s *transactionService) UpdateStatus(ctx context.Context, ref string, status domain.TransactionStatus, identity *domain.Identity) (*domain.Transaction, error) {
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", apperrors.ErrForbidden)
	}
	status = domain.TransactionStatus(strings.TrimSpace(string(status)))
	if status == "" {
		return nil, fmt.Errorf("%w: Missing status", apperrors.ErrValidation)
	}

	existing, err := s.findByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.policy(existing.Status, status); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := s.Now()
	updated, err := s.txnRepo.UpdateTransactionStatus(ctx, existing.ID, status, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to update transaction status", slog.String("tx", existing.Reference()))
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}

	auditMsg := "ADMIN STATUS CHANGE"
	if status.IsApproval() {
		auditMsg = "ADMIN APPROVE"
	}
	s.LogInfo(ctx, auditMsg,
		slog.String("admin", identity.Actor()),
		slog.String("tx", updated.Reference()),
		slog.String("from", string(existing.Status)),
		slog.String("to", string(status)),
		slog.String("at", now.Format(time.RFC3339)))

	s.broadcast(ctx, domain.EventTransactionUpdated, updated)

	if status.IsCompleted() {
		s.reconcile(ctx, updated)
		if s.notifier != nil {
			s.notifier.NotifyPaymentConfirmed(ctx, updated)
		}
	}
	return updated, nil
}

// List returns one page of the caller's transactions, or anyone's for admins.
func (s *transactionService) List(ctx context.Context, params dto.ListTransactionsParams, identity *domain.Identity) (*dto.ListTransactionsResponse, error) {
	if !identity.Authenticated() {
		return nil, fmt.Errorf("%w: must be authenticated", apperrors.ErrUnauthorized)
	}

	filter := portsrepo.TransactionFilter{Limit: params.Limit}
	switch {
	case params.UserID != "":
		if !identity.IsAdmin() && params.UserID != identity.ID {
			return nil, fmt.Errorf("%w: cannot access other users", apperrors.ErrForbidden)
		}
		filter.UserID = params.UserID
	case !identity.IsAdmin():
		filter.UserID = identity.ID
	}
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	if params.NextToken != "" {
		ts, id, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.After = &portsrepo.TransactionCursor{Timestamp: ts, ID: id}
	}

	pageSize := filter.Limit
	filter.Limit = pageSize + 1
	items, err := s.txnRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_filter", filter.UserID))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{Items: items}
	if len(items) > pageSize {
		resp.Items = items[:pageSize]
		last := resp.Items[pageSize-1]
		token := pagination.EncodeToken(last.Timestamp, last.ID)
		resp.NextToken = &token
	}
	if resp.Items == nil {
		resp.Items = []domain.Transaction{}
	}
	return resp, nil
}

// Get returns one transaction by id or key to its owner or an admin.
func (s *transactionService) Get(ctx context.Context, ref string, identity *domain.Identity) (*domain.Transaction, error) {
	if !identity.Authenticated() {
		return nil, fmt.Errorf("%w: must be authenticated", apperrors.ErrUnauthorized)
	}
	txn, err := s.findByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && txn.UserID != identity.ID {
		return nil, fmt.Errorf("%w: cannot access other users", apperrors.ErrForbidden)
	}
	return txn, nil
}

// findByRef resolves ref as a store id first, then as an idempotency key.
func (s *transactionService) findByRef(ctx context.Context, ref string) (*domain.Transaction, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: Transaction not found", apperrors.ErrNotFound)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, ref)
	if err == nil {
		return txn, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	txn, err = s.txnRepo.FindTransactionByKey(ctx, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: Transaction not found", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return txn, nil
}

// reconcile runs membership evaluation then balance application. Failures are logged and
// swallowed: the transaction itself is already durable.
func (s *transactionService) reconcile(ctx context.Context, txn *domain.Transaction) {
	if err := s.membership.Evaluate(ctx, txn); err != nil {
		s.LogWarn(ctx, err, "Membership update failed", slog.String("tx", txn.Reference()))
	}
	if err := s.reconciler.Apply(ctx, txn); err != nil {
		s.LogWarn(ctx, err, "Apply balances failed", slog.String("tx", txn.Reference()))
	}
}

// broadcast sends a snapshot of txn to its owner and to admins.
func (s *transactionService) broadcast(ctx context.Context, name string, txn *domain.Transaction) {
	snapshot := *txn
	if snapshot.UserID != "" {
		s.publisher.EmitToUser(ctx, snapshot.UserID, name, snapshot)
	}
	s.publisher.EmitToAdmins(ctx, name, snapshot)
}

func stripSystemFields(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	for _, k := range systemFields {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func roleOrDefault(role string) string {
	if role == "" {
		return defaultRole
	}
	return role
}
