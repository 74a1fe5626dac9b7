package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/food"
)

// SearchFood looks up nutrition facts. Backend failures yield an empty list.
func (h *Handler) SearchFood(c *gin.Context) {
	var req food.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}
	resp, err := h.foodSvc.Search(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
