package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yanqian/vita/internal/infra/config"
	"github.com/yanqian/vita/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger := handler.logger

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Telemetry.Enabled {
		router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	// errorHandlingMiddleware must precede every middleware that aborts.
	router.Use(
		requestLogger(logger),
		metricsMiddleware(),
		errorHandlingMiddleware(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", handler.Health)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api/v1")
	{
		public := api.Group("/auth")
		public.POST("/register", handler.Register)
		public.POST("/login", handler.Login)
		public.POST("/refresh", handler.Refresh)
		public.GET("/google/login", handler.GoogleLogin)
		public.GET("/google/callback", handler.GoogleCallback)
	}

	secured := api.Group("", authMiddleware(handler.authSvc, cfg.HTTP.LoginPath))
	{
		secured.GET("/auth/me", handler.Me)
		secured.POST("/auth/logout", handler.Logout)
		secured.PATCH("/profile", handler.UpdateProfile)
		secured.GET("/onboarding", handler.OnboardingStatus)
		secured.POST("/onboarding/steps", handler.OnboardingStep)
		secured.POST("/onboarding", handler.SubmitOnboarding)
		secured.POST("/food/search", handler.SearchFood)
	}

	onboarded := secured.Group("", assessmentMiddleware(handler.onboardingSvc, cfg.HTTP.OnboardingPath))
	{
		onboarded.GET("/dashboard", handler.Dashboard)
		onboarded.GET("/daily-logs/today", handler.TodayLog)
		onboarded.PUT("/daily-logs/today", handler.SaveTodayLog)
		onboarded.POST("/daily-logs/today/task/complete", handler.CompleteTodayTask)
		onboarded.POST("/coach/chat", handler.CoachChat)
		onboarded.GET("/coach/messages", handler.CoachMessages)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
