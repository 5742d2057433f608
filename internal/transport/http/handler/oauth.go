package handler

import (
	"github.com/gin-gonic/gin"

	"ai-chat-studio/internal/app"
	"ai-chat-studio/internal/transport/http/response"
)

type OAuthHandler struct {
	oauthService *app.OAuthService
}

func NewOAuthHandler(oauthService *app.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthService: oauthService}
}

// LoginURL returns the Google authorization URL for the frontend to
// redirect to.
func (h *OAuthHandler) LoginURL(c *gin.Context) {
	url, err := h.oauthService.LoginURL(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.OK(c, gin.H{"url": url})
}

// Callback completes the authorization-code flow. Google calls this with
// code and state in the query string; the one-time code never appears in
// the response body.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	result, err := h.oauthService.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.OK(c, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":           result.User.ID,
			"username":     result.User.Username,
			"email":        result.User.Email,
			"display_name": result.User.DisplayName,
			"avatar_url":   result.User.AvatarURL,
			"is_admin":     result.User.IsAdmin,
		},
	})
}

// Configured reports whether Google sign-in is available, so the frontend
// can hide the button when it is not.
func (h *OAuthHandler) Configured(c *gin.Context) {
	response.OK(c, gin.H{"google": h.oauthService.Configured()})
}
