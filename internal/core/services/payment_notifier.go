package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/utils"
)

//go:embed templates/*
var templateFS embed.FS

var (
	confirmationHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/payment_confirmation.gohtml"))
	confirmationText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/payment_confirmation.txt"))
)

const dateLayout = "January 2, 2006"

// confirmationData feeds both confirmation templates.
type confirmationData struct {
	Name         string
	Intro        string
	Amount       string
	Reference    string
	MembershipID string
	ValidUntil   string
	DueDate      string
	Address      string
	Network      string
}

type paymentNotifier struct {
	BaseService
	accountRepo portsrepo.AccountReader
	mailer      portssvc.Mailer
	queue       portssvc.TaskQueue
}

// NewPaymentNotifier creates the notifier that emails payment confirmations through queue.
func NewPaymentNotifier(accountRepo portsrepo.AccountReader, mailer portssvc.Mailer, queue portssvc.TaskQueue) portssvc.PaymentNotifierSvc {
	return &paymentNotifier{accountRepo: accountRepo, mailer: mailer, queue: queue}
}

var _ portssvc.PaymentNotifierSvc = (*paymentNotifier)(nil)

// NotifyPaymentConfirmed looks up the owner and mails a confirmation in the background.
func (s *paymentNotifier) NotifyPaymentConfirmed(ctx context.Context, txn *domain.Transaction) {
	if txn == nil || txn.UserID == "" {
		return
	}
	snapshot := *txn
	logger := s.GetLogger(ctx)

	queued := s.queue.Submit("payment-confirmation", func(taskCtx context.Context) error {
		taskCtx = middleware.WithLogger(taskCtx, logger)
		err := s.send(taskCtx, &snapshot)
		if err != nil {
			s.LogWarn(taskCtx, err, "Payment confirmation email not sent", slog.String("tx", snapshot.Reference()))
		}
		return err
	})
	if !queued {
		logger.Warn("Payment confirmation dropped, queue full", slog.String("tx", snapshot.Reference()))
	}
}

func (s *paymentNotifier) send(ctx context.Context, txn *domain.Transaction) error {
	account, err := s.accountRepo.FindAccountByID(ctx, txn.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load recipient: %w", err)
	}
	if account.Email == "" {
		return nil
	}

	msg, err := RenderPaymentConfirmation(account, txn)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

// RenderPaymentConfirmation builds the confirmation email for the transaction type.
// Unknown types get a generic "Payment confirmed" message.
func RenderPaymentConfirmation(account *domain.Account, txn *domain.Transaction) (portssvc.MailMessage, error) {
	data := confirmationData{
		Name:      account.Name,
		Amount:    utils.FormatAmount(txn.Amount, txn.Currency),
		Reference: txn.Reference(),
	}

	var subject string
	switch txn.Type.Normalize() {
	case domain.TypeMembership:
		subject = "Your membership is active"
		data.Intro = "Thank you, your membership payment has been confirmed."
		data.MembershipID = account.MembershipID
		if account.ExpiresAt != nil {
			data.ValidUntil = account.ExpiresAt.Format(dateLayout)
		}
	case domain.TypeDeposit:
		subject = "Deposit confirmed"
		data.Intro = "Your deposit has been confirmed and credited to your account."
	case domain.TypeLoan:
		subject = "Loan approved"
		data.Intro = "Your loan has been approved."
		if txn.DueDate != nil {
			data.DueDate = txn.DueDate.Format(dateLayout)
		}
	case domain.TypeWithdrawal, "withdraw":
		subject = "Withdrawal processed"
		data.Intro = "Your withdrawal has been processed."
		data.Address = txn.WithdrawalAddress
		data.Network = txn.Network
	default:
		subject = "Payment confirmed"
		data.Intro = "Your payment has been confirmed."
	}

	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return portssvc.MailMessage{}, fmt.Errorf("failed to render html confirmation: %w", err)
	}
	if err := confirmationText.Execute(&text, data); err != nil {
		return portssvc.MailMessage{}, fmt.Errorf("failed to render text confirmation: %w", err)
	}

	return portssvc.MailMessage{
		To:      account.Email,
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
