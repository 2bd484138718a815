package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/repository"
	"routeradar/internal/service/project"
)

type ProjectHandler struct {
	svc    *project.Service
	logger *zap.Logger
}

func NewProjectHandler(svc *project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger}
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("ListProjects: failed to fetch projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}

	h.logger.Info("ListProjects: success", zap.Int("project_count", len(projects)))
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}

type createProjectRequest struct {
	Title         string   `json:"title"`
	Neighborhoods []string `json:"neighborhoods"`
	Status        string   `json:"status"`
	EstCompletion string   `json:"estCompletion"`
	ImageURL      string   `json:"imageUrl"`
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateProject: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := model.Project{
		Title:         req.Title,
		Neighborhoods: req.Neighborhoods,
		Status:        req.Status,
		EstCompletion: req.EstCompletion,
		ImageURL:      req.ImageURL,
	}

	id, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		if errors.Is(err, project.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		h.logger.Error("CreateProject: failed to create project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	h.logger.Info("CreateProject: success", zap.String("id", id))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := c.Param("id")

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("UpdateProject: invalid request body",
			zap.String("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, project.ErrInvalidPatch):
			h.logger.Warn("UpdateProject: rejected patch", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		default:
			h.logger.Error("UpdateProject: failed to update project",
				zap.String("id", id),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		}
		return
	}

	h.logger.Info("UpdateProject: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteProject handles DELETE /api/projects/:id. Deletion does not cascade:
// issues referencing the project keep their projectId and show as unlinked.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("DeleteProject: failed to delete project",
			zap.String("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	h.logger.Info("DeleteProject: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
