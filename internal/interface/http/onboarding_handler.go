package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	"github.com/yanqian/vita/internal/domain/onboarding"
)

// OnboardingStatus reports whether the user has an assessment.
func (h *Handler) OnboardingStatus(c *gin.Context) {
	status, err := h.onboardingSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, status)
}

// OnboardingStep validates a draft against one step of the flow.
func (h *Handler) OnboardingStep(c *gin.Context) {
	var req onboarding.StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	resp, err := h.onboardingSvc.ValidateStep(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitOnboarding classifies the answers and stores the assessment.
func (h *Handler) SubmitOnboarding(c *gin.Context) {
	var answers lifestyle.Answers
	if err := c.ShouldBindJSON(&answers); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	assessment, err := h.onboardingSvc.Submit(c.Request.Context(), userID(c), answers)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, assessment)
}
