package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Line outcomes recorded by IngestLinesTotal.
const (
	OutcomeInserted   = "inserted"
	OutcomeParseError = "parse_error"
	OutcomeWriteError = "write_error"
	OutcomeSkipped    = "skipped"
)

// Ingestion metrics
var (
	// IngestLinesTotal tracks processed input lines by outcome
	IngestLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanhistory_ingest_lines_total",
			Help: "Total number of input lines processed by outcome",
		},
		[]string{"outcome"},
	)

	// IngestRunsTotal tracks ingestion runs by status
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanhistory_ingest_runs_total",
			Help: "Total number of ingestion runs by status",
		},
		[]string{"status"},
	)

	// IngestRunDuration tracks ingestion run duration
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scanhistory_ingest_run_duration_seconds",
			Help:    "Ingestion run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
		},
	)
)

// Report metrics
var (
	// ReportRequestsTotal tracks report builds by report and data source (db or cache)
	ReportRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanhistory_report_requests_total",
			Help: "Total number of report builds by report and source",
		},
		[]string{"report", "source"},
	)

	// ReportQueryDuration tracks database time spent per report
	ReportQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scanhistory_report_query_duration_seconds",
			Help:    "Report query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	// ReportErrorsTotal tracks failed report builds
	ReportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanhistory_report_errors_total",
			Help: "Total number of failed report builds",
		},
		[]string{"report"},
	)
)
