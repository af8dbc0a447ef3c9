package routes

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openctemio/scanhistory/internal/infra/http/handler"
)

// registerHealthRoutes registers health check and metrics endpoints.
func registerHealthRoutes(router Router, h *handler.HealthHandler) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", promhttp.Handler().ServeHTTP)
}

// registerReportRoutes registers the menu and the report pages.
func registerReportRoutes(router Router, h *handler.ReportHandler) {
	router.GET("/", h.Index)
	router.GET("/{report}", h.Report)
	router.NotFound(h.NotFound)
}
