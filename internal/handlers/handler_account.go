package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts. rg must already authenticate.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/me", h.getMyAccount)
	}
}

// getMyAccount godoc
// @Summary Get the caller's account
// @Description Returns balances and membership of the authenticated user, creating the account on first access.
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.Envelope{data=dto.AccountResponse}
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 500 {object} dto.Envelope "Server error"
// @Security BearerAuth
// @Router /accounts/me [get]
func (h *accountHandler) getMyAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetIdentityFromContext(c)

	account, err := h.accountService.GetAccount(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err, "Get account")
		return
	}

	logger.Debug("Account retrieved", slog.String("user_id", account.UserID))
	c.JSON(http.StatusOK, dto.OK(dto.ToAccountResponse(account)))
}
