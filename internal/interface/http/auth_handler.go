package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/auth"
)

// Register creates an email/password account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for tokens.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh issues a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoogleLogin redirects to the Google consent screen.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_error", "failed to start oauth flow", err))
		return
	}
	target, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	setOAuthStateCookie(c, state, verifier)
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback completes the OAuth flow. With a post-login URL the tokens
// are handed to the frontend in the URL fragment.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		clearOAuthStateCookie(c)
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "oauth_denied", reason, nil))
		return
	}
	stored, ok := readOAuthStateCookie(c, c.Query("state"))
	clearOAuthStateCookie(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_state", "oauth state mismatch", nil))
		return
	}
	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), c.Query("code"), stored.CodeVerifier)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	if h.postLoginURL == "" {
		c.JSON(http.StatusOK, resp)
		return
	}
	fragment := url.Values{}
	fragment.Set("token", resp.Token)
	fragment.Set("refreshToken", resp.RefreshToken)
	c.Redirect(http.StatusFound, h.postLoginURL+"#"+fragment.Encode())
}

// Me returns the authenticated profile.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.authSvc.Profile(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the display name.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req auth.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	user, err := h.authSvc.UpdateProfile(c.Request.Context(), userID(c), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout revokes provider tokens. Access tokens simply expire.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), userID(c)); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
