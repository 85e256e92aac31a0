package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// transactionHandler handles HTTP requests related to ledger transactions.
type transactionHandler struct {
	txnService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{txnService: ts}
}

// RegisterTransactionRoutes registers the transaction routes. Listing accepts anonymous callers
// so the service can answer 401 itself; every other route requires a bearer token.
func RegisterTransactionRoutes(rg *gin.RouterGroup, txnService portssvc.TransactionSvcFacade, jwtSecret, jwtIssuer string) {
	h := newTransactionHandler(txnService)

	txns := rg.Group("/transactions")
	txns.GET("", middleware.OptionalAuthMiddleware(jwtSecret, jwtIssuer), h.listTransactions)

	authed := txns.Group("", middleware.AuthMiddleware(jwtSecret, jwtIssuer))
	{
		authed.POST("", h.createTransaction)
		authed.GET("/:id", h.getTransaction)
		authed.PATCH("/:id/status", h.updateTransactionStatus)
	}
}

// createTransaction godoc
// @Summary Record a transaction
// @Description Records a deposit, loan, withdrawal or membership payment. Resubmitting a transactionId returns the stored record.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.Envelope{data=domain.Transaction}
// @Failure 400 {object} dto.Envelope "Invalid input"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 403 {object} dto.Envelope "Loan access restricted to members"
// @Failure 500 {object} dto.Envelope "Server error"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
		return
	}
	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err == nil {
		req.Extra = dto.CollectExtras(raw)
	}

	identity, _ := middleware.GetIdentityFromContext(c)
	txn, err := h.txnService.Create(c.Request.Context(), req, identity)
	if err != nil {
		respondError(c, err, "Create transaction")
		return
	}

	logger.Info("Transaction recorded", slog.String("id", txn.ID), slog.String("tx", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.OK(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists the caller's transactions newest first. Admins may list everyone or filter by userId.
// @Tags transactions
// @Produce  json
// @Param   userId query string false "Owner filter"
// @Param   limit query int false "Page size (max 200)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.Envelope{data=dto.ListTransactionsResponse}
// @Failure 400 {object} dto.Envelope "Invalid query parameters"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Failure 500 {object} dto.Envelope "Server error"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	identity, _ := middleware.GetIdentityFromContext(c)
	resp, err := h.txnService.List(c.Request.Context(), params, identity)
	if err != nil {
		respondError(c, err, "List transactions")
		return
	}
	c.JSON(http.StatusOK, dto.OK(resp))
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Fetches one transaction by id or transactionId. Owners and admins only.
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction id or transactionId"
// @Success 200 {object} dto.Envelope{data=domain.Transaction}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 403 {object} dto.Envelope "Forbidden"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	identity, _ := middleware.GetIdentityFromContext(c)
	txn, err := h.txnService.Get(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		respondError(c, err, "Get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.OK(txn))
}

// updateTransactionStatus godoc
// @Summary Change a transaction's status
// @Description Admin only. Completing a transaction credits balances, grants qualifying memberships and emails the owner.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction id or transactionId"
// @Param   status body dto.UpdateTransactionStatusRequest true "New status"
// @Success 200 {object} dto.Envelope{data=domain.Transaction}
// @Failure 400 {object} dto.Envelope "Missing status"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 403 {object} dto.Envelope "admin only"
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Failure 500 {object} dto.Envelope "Server error"
// @Security BearerAuth
// @Router /transactions/{id}/status [patch]
func (h *transactionHandler) updateTransactionStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransactionStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
		return
	}

	identity, _ := middleware.GetIdentityFromContext(c)
	txn, err := h.txnService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.TransactionStatus(req.Status), identity)
	if err != nil {
		respondError(c, err, "Update transaction status")
		return
	}
	c.JSON(http.StatusOK, dto.OK(txn))
}
