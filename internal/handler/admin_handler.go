package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routeradar/internal/service/seed"
)

type AdminHandler struct {
	seeder *seed.Service
	logger *zap.Logger
}

func NewAdminHandler(seeder *seed.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{seeder: seeder, logger: logger}
}

// SeedProjects handles POST /api/admin/seed-projects
func (h *AdminHandler) SeedProjects(c *gin.Context) {
	h.logger.Info("SeedProjects request received", zap.String("client_ip", c.ClientIP()))

	result, err := h.seeder.Seed(c.Request.Context())
	if err != nil {
		if errors.Is(err, seed.ErrInvalidDataset) {
			h.logger.Warn("SeedProjects: bad dataset", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("SeedProjects: seeding failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed projects"})
		return
	}

	h.logger.Info("SeedProjects: done",
		zap.Bool("seeded", result.Seeded),
		zap.Int("count", result.Count),
	)
	c.JSON(http.StatusOK, result)
}
