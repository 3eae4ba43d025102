package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/internal/config"
	"github.com/ecodao/sigil/internal/logger"
	"github.com/ecodao/sigil/ports"
	"github.com/ecodao/sigil/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(
	authService *service.AuthService,
	profileService *service.ProfileService,
	store ports.Store,
	rl config.RateLimit,
	log *logger.Logger,
) *gin.Engine {
	router := gin.Default()

	authHandlers := NewAuthHandlers(authService)
	profileHandlers := NewProfileHandlers(profileService)

	router.GET("/healthz", func(c *gin.Context) {
		if _, err := store.Get(c.Request.Context(), "healthz"); err != nil && !errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	siwe := router.Group("/api/siwe")
	{
		siwe.GET("/nonce",
			RateLimitMiddleware(store, "nonce", rl.NonceLimit, rl.Window, log),
			authHandlers.Nonce)
		siwe.POST("/prepare", authHandlers.Prepare)
		siwe.POST("/verify",
			RateLimitMiddleware(store, "verify", rl.VerifyLimit, rl.Window, log),
			authHandlers.Verify)
		siwe.POST("/logout", authHandlers.Logout)
	}

	users := router.Group("/api/users")
	users.Use(AuthMiddleware(authService))
	{
		users.GET("/me", profileHandlers.Me)
		users.PUT("/me", profileHandlers.UpdateMe)
		users.GET("/followers/:identity", profileHandlers.Followers)
		users.GET("/following/:identity", profileHandlers.Following)
		users.POST("/follow/:identity", profileHandlers.Follow)
		users.DELETE("/follow/:identity", profileHandlers.Unfollow)
		users.GET("/:identity", profileHandlers.Get)
	}

	return router
}
