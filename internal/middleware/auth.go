// Package middleware provides HTTP middleware for the card API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trkart/internal/models"
)

// identityKey is the gin context key the authenticated identity is
// stored under.
const identityKey = "identity"

// SessionResolver maps a session token to an authenticated identity.
// The bool result is false for absent or expired tokens.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Identity, bool, error)
}

// SessionAuth authenticates requests from a session token carried in
// the named cookie or an Authorization: Bearer header. Requests that
// do not resolve to a live session are rejected; handlers behind this
// middleware can assume Identity(c) succeeds.
func SessionAuth(resolver SessionResolver, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
				"error":   "UNAUTHORIZED",
			})
			return
		}

		identity, ok, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Error("failed to resolve session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "An internal error occurred",
				"error":   "INTERNAL_ERROR",
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Session is invalid or has expired",
				"error":   "UNAUTHORIZED",
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// Identity returns the authenticated identity set by SessionAuth.
func Identity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

// SessionToken extracts the token from the session cookie, falling
// back to a bearer header for non-browser clients. Handlers that act
// on the session itself (logout) use this too, so both credential
// forms name the same session everywhere.
func SessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
