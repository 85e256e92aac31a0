package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

const serverErrorMessage = "Server error"

var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrDuplicate, http.StatusConflict},
}

// respondError maps a service error onto the JSON envelope. 5xx details stay in the logs.
func respondError(c *gin.Context, err error, action string) {
	logger := middleware.GetLoggerFromContext(c)
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(action+" failed", slog.String("error", err.Error()))
		msg = serverErrorMessage
	} else {
		logger.Warn(action+" rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, dto.Fail(msg))
}

func errorStatus(err error) (int, string) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			return m.status, publicMessage(err, m.sentinel)
		}
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, serverErrorMessage
}

// publicMessage trims the wrapping context off "...: <sentinel>: detail" and returns the detail.
func publicMessage(err error, sentinel error) string {
	text := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(text, marker); i >= 0 {
		return text[i+len(marker):]
	}
	return sentinel.Error()
}
