package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID   uint
	Username string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the identity stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}

// GetIdentity extracts the identity from the gin request context.
func GetIdentity(c *gin.Context) (Identity, bool) {
	return IdentityFromContext(c.Request.Context())
}
