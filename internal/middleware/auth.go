package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingHeader = errors.New("Authorization header required")
	errHeaderFormat  = errors.New("Authorization header format must be Bearer {token}")
	errMissingSub    = errors.New("Invalid token claims")
)

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens signed with jwtSecret
// and issued by jwtIssuer.
func AuthMiddleware(jwtSecret, jwtIssuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if err := authenticate(c, jwtSecret, jwtIssuer); err != nil {
			logger.Warn("Authentication failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(authErrorMessage(err)))
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware decodes a bearer token when one is present and never rejects the request.
// Handlers see a nil identity for anonymous or invalid callers.
func OptionalAuthMiddleware(jwtSecret, jwtIssuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if err := authenticate(c, jwtSecret, jwtIssuer); err != nil {
			GetLoggerFromCtx(c.Request.Context()).Debug("Ignoring invalid optional token", slog.String("error", err.Error()))
		}
		c.Next()
	}
}

// authenticate parses the bearer token and stores the identity and enriched logger on the request.
func authenticate(c *gin.Context, jwtSecret, jwtIssuer string) error {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return errMissingHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return errHeaderFormat
	}

	claims, err := utils.ParseIdentityToken(parts[1], jwtSecret, jwtIssuer)
	if err != nil {
		return err
	}
	if claims.Subject == "" {
		return errMissingSub
	}

	identity := claims.Identity()
	ctx := WithIdentity(c.Request.Context(), identity)
	enrichedLogger := GetLoggerFromCtx(ctx).With(slog.String("user_id", identity.ID))
	c.Request = c.Request.WithContext(WithLogger(ctx, enrichedLogger))
	return nil
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingHeader), errors.Is(err, errHeaderFormat), errors.Is(err, errMissingSub):
		return err.Error()
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "Token not valid yet"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "Invalid token issuer"
	default:
		return "Invalid token"
	}
}
