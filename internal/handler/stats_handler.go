package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routeradar/internal/service/stats"
)

type StatsHandler struct {
	svc    *stats.Service
	logger *zap.Logger
}

func NewStatsHandler(svc *stats.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// GetIssueStats handles GET /api/issues/stats
func (h *StatsHandler) GetIssueStats(c *gin.Context) {
	counts, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		h.logger.Error("GetIssueStats: failed to aggregate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch issue stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": counts,
	})
}
