package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// respondError maps the core error taxonomy onto HTTP status codes. Nonce
// failures share one message: absent, expired and consumed are deliberately
// indistinguishable to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, core.ErrInvalidNonce):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired nonce"})
	case errors.Is(err, core.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
	case errors.Is(err, core.ErrInvalidSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
	case errors.Is(err, core.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	case errors.Is(err, core.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
	case errors.Is(err, core.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// Nonce handles the nonce request. The address is optional; when given the
// nonce is bound to it.
func (h *AuthHandlers) Nonce(c *gin.Context) {
	challenge, err := h.authService.IssueNonce(c.Request.Context(), c.Query("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"nonce":     challenge.Nonce,
		"expiresAt": challenge.ExpiresAt.Format(time.RFC3339),
	}
	if challenge.Address != "" {
		resp["address"] = challenge.Address
	}
	c.JSON(http.StatusOK, resp)
}

// Prepare renders the canonical challenge message for an issued nonce.
func (h *AuthHandlers) Prepare(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Nonce   string `json:"nonce" binding:"required"`
		ChainID int64  `json:"chainId"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	message, err := h.authService.PrepareMessage(c.Request.Context(), req.Address, req.Nonce, req.ChainID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Verify handles both verification input variants: {message, signature} and
// {address, nonce, signature}.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Message   string `json:"message"`
		Signature string `json:"signature" binding:"required"`
		Address   string `json:"address"`
		Nonce     string `json:"nonce"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var result *service.AuthResult
	var err error
	switch {
	case req.Message != "":
		result, err = h.authService.VerifyMessage(c.Request.Context(), req.Message, req.Signature)
	case req.Address != "" && req.Nonce != "":
		result, err = h.authService.VerifyDirect(c.Request.Context(), req.Address, req.Nonce, req.Signature)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":      result.Address,
		"token":        result.Token,
		"token_type":   "Bearer",
		"expiresAt":    result.ExpiresAt.Format(time.RFC3339),
		"isNewProfile": result.IsNewProfile,
	})
}

// Logout handles logout. The credential is self-contained, so logout is
// stateless and always succeeds; the client discards the token.
func (h *AuthHandlers) Logout(c *gin.Context) {
	address := ""
	if token := bearerToken(c); token != "" {
		if cred, err := h.authService.ValidateToken(token); err == nil {
			address = cred.Subject
		}
	}

	h.authService.Logout(c.Request.Context(), address)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
