package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/internal/logger"
	"github.com/ecodao/sigil/ports"
	"github.com/ecodao/sigil/service"
)

const identityKey = "identity"

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

func callerIdentity(c *gin.Context) string {
	return c.GetString(identityKey)
}

// AuthMiddleware creates middleware that validates bearer credentials and
// stores the subject identity in the request context.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		cred, err := authService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(identityKey, cred.Subject)
		c.Next()
	}
}

// RateLimitMiddleware guards an operation class with a per-client-IP counter.
// The window starts at the first request and resets by TTL expiry of the
// counter key.
func RateLimitMiddleware(store ports.Store, op string, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + op + ":" + c.ClientIP()

		count, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Error("rate limit counter failed", "op", op, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		c.Next()
	}
}
