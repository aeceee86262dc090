package api

import (
	"context"
	"net/http"
	"strings"

	"tablenotify/internal/common/logger"

	"github.com/gin-gonic/gin"
)

const actorKeyContext = "actorKey"

// TokenResolver maps a tenant API token to that tenant's owner key.
type TokenResolver interface {
	ResolveAPIToken(ctx context.Context, token string) (string, error)
}

// AuthMiddleware authenticates the tenant once at the boundary and stores the
// resolved actor key in the request context. Every layer below receives the
// actor explicitly rather than reading ambient session state.
func AuthMiddleware(resolver TokenResolver, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		token := parts[1]
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ownerKey, err := resolver.ResolveAPIToken(c.Request.Context(), token)
		if err != nil {
			log.Error("token resolution failed", map[string]interface{}{"error": err.Error()})
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify token"})
			return
		}
		if ownerKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorKeyContext, ownerKey)
		c.Next()
	}
}

// ActorKey returns the authenticated tenant's owner key, empty when the route
// is unauthenticated.
func ActorKey(c *gin.Context) string {
	return c.GetString(actorKeyContext)
}
