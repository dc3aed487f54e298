package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/db"
)

func (h *Handler) Health(c *gin.Context) {
	if err := db.Ping(h.DB); err != nil {
		h.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    common.CodeInternal,
			"message": "unhealthy",
			"data":    gin.H{"status": "unhealthy"},
		})
		return
	}
	common.OK(c, gin.H{"status": "healthy"})
}
