package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routeradar/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	issueHandler *handler.IssueHandler,
	projectHandler *handler.ProjectHandler,
	statsHandler *handler.StatsHandler,
	adminHandler *handler.AdminHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/issues", issueHandler.ListIssues)
		api.POST("/issues", issueHandler.CreateIssue)
		api.PUT("/issues/:id", issueHandler.UpdateIssue)
		api.DELETE("/issues/:id", issueHandler.DeleteIssue)
		api.GET("/issues/stats", statsHandler.GetIssueStats)

		api.GET("/projects", projectHandler.ListProjects)
		api.POST("/projects", projectHandler.CreateProject)
		api.PUT("/projects/:id", projectHandler.UpdateProject)
		api.DELETE("/projects/:id", projectHandler.DeleteProject)

		api.POST("/admin/seed-projects", adminHandler.SeedProjects)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
