package main

import (
	"github.com/openctemio/scanhistory/internal/app/report"
	"github.com/openctemio/scanhistory/internal/config"
	"github.com/openctemio/scanhistory/internal/infra/database"
	"github.com/openctemio/scanhistory/internal/infra/http/handler"
	"github.com/openctemio/scanhistory/internal/infra/http/routes"
	"github.com/openctemio/scanhistory/internal/infra/redis"
	"github.com/openctemio/scanhistory/pkg/logger"
)

// NewHandlers creates all HTTP handlers.
func NewHandlers(cfg *config.Config, db *database.DB, redisClient *redis.Client, reports *report.Service, log *logger.Logger) routes.Handlers {
	healthOpts := []handler.HealthHandlerOption{handler.WithDatabase(db)}
	if redisClient != nil {
		healthOpts = append(healthOpts, handler.WithRedis(redisClient))
	}

	return routes.Handlers{
		Health: handler.NewHealthHandler(healthOpts...),
		Report: handler.NewReportHandler(reports, cfg.Report.Title, log),
	}
}
