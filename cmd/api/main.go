package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"routeradar/internal/config"
	"routeradar/internal/db"
	"routeradar/internal/handler"
	"routeradar/internal/httpserver"
	"routeradar/internal/mq"
	redisclient "routeradar/internal/redis"
	"routeradar/internal/repository"
	"routeradar/internal/service/issue"
	"routeradar/internal/service/project"
	"routeradar/internal/service/seed"
	"routeradar/internal/service/stats"
	"routeradar/internal/util"
)

func main() {
	// Load config
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.EnsureSchema(context.Background(), dbConn); err != nil {
		logger.Fatal("Schema initialization failed", zap.Error(err))
	}

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	// Init Repositories
	issueRepo := repository.NewIssueRepository(dbConn, logger)
	projectRepo := repository.NewProjectRepository(dbConn, logger)

	// Init Services
	issueSvc := issue.NewService(issueRepo, publisher, logger)
	projectSvc := project.NewService(projectRepo, issueRepo, publisher, logger)
	seedSvc := seed.NewService(projectRepo, publisher, logger, cfg.Seed.DataPath)
	statsSvc := stats.NewService(issueRepo, rdb, logger)

	// Init Handlers
	issueHandler := handler.NewIssueHandler(issueSvc, logger)
	projectHandler := handler.NewProjectHandler(projectSvc, logger)
	statsHandler := handler.NewStatsHandler(statsSvc, logger)
	adminHandler := handler.NewAdminHandler(seedSvc, logger)
	healthHandler := handler.NewHealthHandler(dbConn, logger)

	// Router
	router := httpserver.NewRouter(issueHandler, projectHandler, statsHandler, adminHandler, healthHandler)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
