package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/auth"
	"github.com/yanqian/vita/internal/domain/onboarding"
	apperrors "github.com/yanqian/vita/pkg/errors"
)

// authMiddleware requires a valid access token. Browser page loads are
// redirected to loginPath instead of receiving a 401.
func authMiddleware(svc auth.Service, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			rejectUnauthenticated(c, loginPath, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !apperrors.IsCode(err, "invalid_token") {
				abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", publicMessage(err), err))
				return
			}
			rejectUnauthenticated(c, loginPath, NewHTTPError(http.StatusUnauthorized, "unauthorized", publicMessage(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// assessmentMiddleware gates routes on completed onboarding and stores the
// assessment on the context.
func assessmentMiddleware(svc onboarding.Service, onboardingPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := svc.Get(c.Request.Context(), userID(c))
		if err != nil {
			abortWithError(c, fromAppError(err))
			return
		}
		if !status.Completed || status.Assessment == nil {
			if wantsHTML(c) && onboardingPath != "" {
				c.Redirect(http.StatusFound, onboardingPath)
				c.Abort()
				return
			}
			abortWithError(c, NewHTTPError(http.StatusForbidden, apperrors.CodeOnboardingRequired, "complete onboarding first", nil))
			return
		}
		setAssessment(c, *status.Assessment)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func rejectUnauthenticated(c *gin.Context, loginPath string, httpErr *HTTPError) {
	if wantsHTML(c) && loginPath != "" {
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
		return
	}
	abortWithError(c, httpErr)
}

func wantsHTML(c *gin.Context) bool {
	return c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html")
}
