package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routeradar/internal/model"
	"routeradar/internal/query"
	"routeradar/internal/repository"
	"routeradar/internal/service/issue"
)

type IssueHandler struct {
	svc    *issue.Service
	logger *zap.Logger
}

func NewIssueHandler(svc *issue.Service, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{svc: svc, logger: logger}
}

// ListIssues handles GET /api/issues
func (h *IssueHandler) ListIssues(c *gin.Context) {
	f := query.ParseIssueFilter(c.Request.URL.Query())

	h.logger.Info("ListIssues request received",
		zap.Int("page", f.Page),
		zap.Int("page_size", f.PageSize),
		zap.String("client_ip", c.ClientIP()),
	)

	issues, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("ListIssues: failed to fetch issues", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch issues"})
		return
	}

	h.logger.Info("ListIssues: success", zap.Int("issue_count", len(issues)))
	c.JSON(http.StatusOK, gin.H{
		"issues": issues,
	})
}

type createIssueRequest struct {
	IssueText    string  `json:"issueText"`
	IssueImage   string  `json:"issueImage"`
	Category     string  `json:"category"`
	Neighborhood string  `json:"neighborhood"`
	ReportedBy   string  `json:"reportedBy"`
	ProjectID    *string `json:"projectId"`
}

// CreateIssue handles POST /api/issues
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateIssue: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := model.Issue{
		IssueText:    req.IssueText,
		IssueImage:   req.IssueImage,
		Category:     req.Category,
		Neighborhood: req.Neighborhood,
		ReportedBy:   req.ReportedBy,
		ProjectID:    req.ProjectID,
	}

	id, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		h.logger.Error("CreateIssue: failed to create issue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create issue"})
		return
	}

	h.logger.Info("CreateIssue: success", zap.String("id", id))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

// UpdateIssue handles PUT /api/issues/:id
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	id := c.Param("id")

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("UpdateIssue: invalid request body",
			zap.String("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, issue.ErrInvalidPatch):
			h.logger.Warn("UpdateIssue: rejected patch", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
		default:
			h.logger.Error("UpdateIssue: failed to update issue",
				zap.String("id", id),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update issue"})
		}
		return
	}

	h.logger.Info("UpdateIssue: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteIssue handles DELETE /api/issues/:id
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
			return
		}
		h.logger.Error("DeleteIssue: failed to delete issue",
			zap.String("id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete issue"})
		return
	}

	h.logger.Info("DeleteIssue: success", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
