package main

import (
	"fmt"

	"github.com/openctemio/scanhistory/internal/app/report"
	"github.com/openctemio/scanhistory/internal/config"
	"github.com/openctemio/scanhistory/internal/infra/database"
	"github.com/openctemio/scanhistory/internal/infra/redis"
	"github.com/openctemio/scanhistory/pkg/logger"
)

// NewReportService wires the report service to the store and, when Redis
// is available and REPORT_CACHE_TTL is positive, to the report cache.
func NewReportService(cfg *config.Config, db *database.DB, redisClient *redis.Client, log *logger.Logger) (*report.Service, error) {
	repo := database.NewReportRepository(db)

	if redisClient == nil || cfg.Report.CacheTTL <= 0 {
		return report.NewService(repo, nil, log), nil
	}

	cache, err := redis.NewCache[report.Table](redisClient, report.CachePrefix, cfg.Report.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	log.Info("report cache enabled", "ttl", cfg.Report.CacheTTL)
	return report.NewService(repo, cache, log), nil
}
