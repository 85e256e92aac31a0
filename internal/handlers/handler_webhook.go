package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
	SignatureHeader = "X-Webhook-Signature"

	maxWebhookBody = 1 << 20
)

type webhookHandler struct {
	webhookService portssvc.WebhookSvc
}

// RegisterWebhookRoutes registers the public payment callbacks.
func RegisterWebhookRoutes(rg *gin.RouterGroup, webhookService portssvc.WebhookSvc) {
	h := &webhookHandler{webhookService: webhookService}

	hooks := rg.Group("/webhooks")
	{
		hooks.POST("/crypto", h.cryptoDeposit)
	}
}

// cryptoDeposit godoc
// @Summary On-chain deposit callback
// @Description Records a crypto deposit as a collateral deposit keyed by the chain tx id. Replays return the stored record.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   X-Webhook-Signature header string false "hex HMAC-SHA256 of the body"
// @Param   deposit body dto.CryptoWebhookRequest true "Deposit callback"
// @Success 200 {object} dto.Envelope{data=domain.Transaction}
// @Failure 400 {object} dto.Envelope "Missing fields"
// @Failure 401 {object} dto.Envelope "Bad signature"
// @Failure 500 {object} dto.Envelope "Server error"
// @Router /webhooks/crypto [post]
func (h *webhookHandler) cryptoDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request body"))
		return
	}
	if err := h.webhookService.VerifySignature(body, c.GetHeader(SignatureHeader)); err != nil {
		respondError(c, err, "Verify webhook signature")
		return
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	var req dto.CryptoWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for crypto webhook", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
		return
	}

	txn, err := h.webhookService.IngestCryptoDeposit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Ingest crypto deposit")
		return
	}
	logger.Info("Crypto deposit ingested", slog.String("tx", txn.TransactionID), slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.OK(txn))
}
