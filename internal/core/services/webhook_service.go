package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

const (
	// MinDepositConfirmations is the confirmation count at which an on-chain deposit counts as settled.
	MinDepositConfirmations = 3

	webhookCurrency       = "BTC"
	defaultDepositNetwork = "Bitcoin"
)

type webhookService struct {
	BaseService
	creator     portssvc.TransactionCreatorSvc
	btcPriceUSD decimal.Decimal
	secret      []byte
}

// NewWebhookService creates the crypto deposit ingestion service.
// btcPriceUSD converts deposited BTC to the USD amount recorded on the transaction.
// An empty secret disables signature checks.
func NewWebhookService(creator portssvc.TransactionCreatorSvc, btcPriceUSD decimal.Decimal, secret string, options ...ServiceOption) portssvc.WebhookSvc {
	svc := &webhookService{creator: creator, btcPriceUSD: btcPriceUSD, secret: []byte(secret)}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.WebhookSvc = (*webhookService)(nil)

// VerifySignature checks the hex HMAC-SHA256 of body when a secret is configured.
func (s *webhookService) VerifySignature(body []byte, signature string) error {
	if len(s.secret) == 0 {
		return nil
	}
	got, err := hex.DecodeString(strings.TrimSpace(strings.TrimPrefix(signature, "sha256=")))
	if err != nil || len(got) == 0 {
		return fmt.Errorf("%w: missing or malformed webhook signature", apperrors.ErrUnauthorized)
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return fmt.Errorf("%w: webhook signature mismatch", apperrors.ErrUnauthorized)
	}
	return nil
}

// IngestCryptoDeposit records an on-chain deposit as a collateral deposit keyed by the chain tx id.
// Replayed callbacks return the stored transaction.
func (s *webhookService) IngestCryptoDeposit(ctx context.Context, req dto.CryptoWebhookRequest) (*domain.Transaction, error) {
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.TxID) == "" || req.AmountBTC == nil || req.AmountBTC.IsZero() {
		return nil, fmt.Errorf("%w: Missing fields", apperrors.ErrValidation)
	}

	status := "Pending"
	if req.Confirmations >= MinDepositConfirmations {
		status = "Confirmed"
	}
	label := req.Network
	if label == "" {
		label = webhookCurrency
	}
	network := req.Network
	if network == "" {
		network = defaultDepositNetwork
	}
	now := s.Now()

	created, err := s.creator.Create(ctx, dto.CreateTransactionRequest{
		TransactionID:     req.TxID,
		Type:              string(domain.TypeDeposit),
		Amount:            req.AmountBTC.Mul(s.btcPriceUSD),
		Currency:          webhookCurrency,
		Status:            status,
		Timestamp:         &now,
		CollateralBTC:     *req.AmountBTC,
		Description:       "On-chain deposit " + label,
		WithdrawalAddress: req.Address,
		Network:           network,
		UserID:            req.UserID,
	}, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to record on-chain deposit", slog.String("tx_id", req.TxID))
		return nil, err
	}
	return created, nil
}
