package services

import (
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
)

// Infrastructure groups the outbound adapters services talk to.
type Infrastructure struct {
	Publisher portssvc.NotificationPublisher
	Events    portssvc.EventStreamSvc
	Mailer    portssvc.Mailer
	Queue     portssvc.TaskQueue
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, infra Infrastructure) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{
		Events: infra.Events,
	}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Membership = NewMembershipEvaluator(repos.AccountRepo, infra.Publisher)
	container.Reconciler = NewBalanceReconciler(repos.AccountRepo, infra.Publisher)

	notifier := NewPaymentNotifier(repos.AccountRepo, infra.Mailer, infra.Queue)
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.AccountRepo,
		container.Membership,
		container.Reconciler,
		infra.Publisher,
		WithPaymentNotifier(notifier),
	)

	container.Webhook = NewWebhookService(container.Transaction, cfg.BTCPriceUSD, cfg.WebhookSecret)

	return container
}
