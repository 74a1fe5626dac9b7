package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/auth"
	"github.com/yanqian/vita/internal/domain/coach"
	"github.com/yanqian/vita/internal/domain/dailylog"
	"github.com/yanqian/vita/internal/domain/dashboard"
	"github.com/yanqian/vita/internal/domain/food"
	"github.com/yanqian/vita/internal/domain/onboarding"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc       auth.Service
	onboardingSvc onboarding.Service
	dailyLogSvc   dailylog.Service
	dashboardSvc  dashboard.Service
	coachSvc      coach.Service
	foodSvc       food.Service
	postLoginURL  string
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	authSvc auth.Service,
	onboardingSvc onboarding.Service,
	dailyLogSvc dailylog.Service,
	dashboardSvc dashboard.Service,
	coachSvc coach.Service,
	foodSvc food.Service,
	authCfg auth.Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc:       authSvc,
		onboardingSvc: onboardingSvc,
		dailyLogSvc:   dailyLogSvc,
		dashboardSvc:  dashboardSvc,
		coachSvc:      coachSvc,
		foodSvc:       foodSvc,
		postLoginURL:  authCfg.Google.PostLoginRedirectURL,
		logger:        logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Dashboard renders the home screen of an onboarded user.
func (h *Handler) Dashboard(c *gin.Context) {
	assessment, _ := getAssessment(c)
	view, err := h.dashboardSvc.Build(c.Request.Context(), userID(c), assessment)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}
