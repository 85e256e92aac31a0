package middleware

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// identityKey is the key used to store the authenticated caller in the request context.
const identityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromCtx returns the caller identity stored by the auth middlewares, or nil.
func IdentityFromCtx(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityKey).(*domain.Identity)
	return identity
}

// GetIdentityFromContext retrieves the authenticated identity from the Gin context.
// It returns the identity and a boolean indicating if it was found.
func GetIdentityFromContext(c *gin.Context) (*domain.Identity, bool) {
	identity := IdentityFromCtx(c.Request.Context())
	return identity, identity != nil
}
