package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/dailylog"
)

// TodayLog returns today's log, assigning the task on first view.
func (h *Handler) TodayLog(c *gin.Context) {
	assessment, _ := getAssessment(c)
	log, err := h.dailyLogSvc.Today(c.Request.Context(), userID(c), assessment.Classification)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, log)
}

// SaveTodayLog upserts today's metrics.
func (h *Handler) SaveTodayLog(c *gin.Context) {
	var in dailylog.MetricsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	assessment, _ := getAssessment(c)
	log, err := h.dailyLogSvc.SaveMetrics(c.Request.Context(), userID(c), assessment.Classification, in)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, log)
}

// CompleteTodayTask marks today's task as done.
func (h *Handler) CompleteTodayTask(c *gin.Context) {
	assessment, _ := getAssessment(c)
	log, err := h.dailyLogSvc.CompleteTask(c.Request.Context(), userID(c), assessment.Classification)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, log)
}
