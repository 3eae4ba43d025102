package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/service"
)

// ProfileHandlers contains HTTP handlers for the profile and social graph
// endpoints. All of them sit behind the auth middleware.
type ProfileHandlers struct {
	profileService *service.ProfileService
}

// NewProfileHandlers creates new profile handlers.
func NewProfileHandlers(profileService *service.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{
		profileService: profileService,
	}
}

func profileResponse(doc *core.ProfileDocument) gin.H {
	return gin.H{
		"identity":    doc.Identity,
		"displayName": doc.DisplayName,
		"bio":         doc.Bio,
		"avatarRef":   doc.AvatarRef,
		"followers":   doc.Followers,
		"following":   doc.Following,
		"createdAt":   doc.CreatedAt,
		"updatedAt":   doc.UpdatedAt,
	}
}

// Me returns the caller's profile, creating it on first access.
func (h *ProfileHandlers) Me(c *gin.Context) {
	doc, _, err := h.profileService.GetOrCreate(c.Request.Context(), callerIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(doc))
}

// UpdateMe applies partial updates to the caller's profile and returns the
// new profile CID.
func (h *ProfileHandlers) UpdateMe(c *gin.Context) {
	var req struct {
		DisplayName *string `json:"displayName"`
		Bio         *string `json:"bio"`
		AvatarRef   *string `json:"avatarRef"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	doc, cid, err := h.profileService.Update(c.Request.Context(), callerIdentity(c), service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarRef:   req.AvatarRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":    profileResponse(doc),
		"profileCid": cid,
	})
}

// Get returns any identity's profile.
func (h *ProfileHandlers) Get(c *gin.Context) {
	doc, err := h.profileService.GetCurrent(c.Request.Context(), c.Param("identity"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(doc))
}

// Follow makes the caller follow the target identity.
func (h *ProfileHandlers) Follow(c *gin.Context) {
	if err := h.profileService.Follow(c.Request.Context(), callerIdentity(c), c.Param("identity")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Now following " + c.Param("identity")})
}

// Unfollow makes the caller unfollow the target identity.
func (h *ProfileHandlers) Unfollow(c *gin.Context) {
	if err := h.profileService.Unfollow(c.Request.Context(), callerIdentity(c), c.Param("identity")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed " + c.Param("identity")})
}

// Followers lists an identity's followers.
func (h *ProfileHandlers) Followers(c *gin.Context) {
	followers, err := h.profileService.Followers(c.Request.Context(), c.Param("identity"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identity":  c.Param("identity"),
		"followers": followers,
		"count":     len(followers),
	})
}

// Following lists the identities an identity follows.
func (h *ProfileHandlers) Following(c *gin.Context) {
	following, err := h.profileService.Following(c.Request.Context(), c.Param("identity"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"identity":  c.Param("identity"),
		"following": following,
		"count":     len(following),
	})
}
