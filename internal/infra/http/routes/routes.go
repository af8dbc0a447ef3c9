// Package routes registers all HTTP routes of the report server.
package routes

import (
	infrahttp "github.com/openctemio/scanhistory/internal/infra/http"
	"github.com/openctemio/scanhistory/internal/infra/http/handler"
)

// Router is an alias to the http package's Router interface.
type Router = infrahttp.Router

// Handlers holds all HTTP handlers for route registration.
type Handlers struct {
	Health *handler.HealthHandler
	Report *handler.ReportHandler
}

// Register registers every route on router.
// Static paths take precedence over /{report}.
func Register(router Router, h Handlers) {
	registerHealthRoutes(router, h.Health)
	registerReportRoutes(router, h.Report)
}
