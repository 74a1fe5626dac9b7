package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookieName = "vita_oauth_state"
	oauthStateCookiePath = "/api/v1/auth/google"
	oauthStateMaxAge     = 300
)

// oauthStateCookie carries the PKCE verifier between the redirect and the callback.
type oauthStateCookie struct {
	State        string `json:"state"`
	CodeVerifier string `json:"verifier"`
}

func secureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}

func setOAuthStateCookie(c *gin.Context, state, codeVerifier string) {
	data, _ := json.Marshal(oauthStateCookie{State: state, CodeVerifier: codeVerifier})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookieName, base64.RawURLEncoding.EncodeToString(data), oauthStateMaxAge, oauthStateCookiePath, "", secureRequest(c), true)
}

func clearOAuthStateCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookieName, "", -1, oauthStateCookiePath, "", secureRequest(c), true)
}

// readOAuthStateCookie returns the stored state when it matches want.
func readOAuthStateCookie(c *gin.Context, want string) (oauthStateCookie, bool) {
	value, err := c.Cookie(oauthStateCookieName)
	if err != nil || value == "" {
		return oauthStateCookie{}, false
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return oauthStateCookie{}, false
	}
	var payload oauthStateCookie
	if err := json.Unmarshal(data, &payload); err != nil {
		return oauthStateCookie{}, false
	}
	if payload.State == "" || payload.CodeVerifier == "" || payload.State != want {
		return oauthStateCookie{}, false
	}
	return payload, true
}
