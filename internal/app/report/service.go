// Package report builds the fixed aggregate reports over stored findings.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openctemio/scanhistory/internal/metrics"
	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
	"github.com/openctemio/scanhistory/pkg/logger"
	"github.com/openctemio/scanhistory/pkg/parsers/nuclei"
)

const (
	sourceDB    = "db"
	sourceCache = "cache"
)

// Service builds report tables, reading through an optional cache.
type Service struct {
	repo   finding.ReportRepository
	cache  Cache
	logger *logger.Logger
}

// NewService creates a report service. cache may be nil.
func NewService(repo finding.ReportRepository, cache Cache, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: log.With("service", "report"),
	}
}

// Get returns the report named by slug.
// Unknown slugs return shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, slug string) (*Table, error) {
	e, ok := lookup(slug)
	if !ok {
		return nil, fmt.Errorf("%w: report %q", shared.ErrNotFound, slug)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, slug)
		if err == nil && cached != nil {
			metrics.ReportRequestsTotal.WithLabelValues(slug, sourceCache).Inc()
			return cached, nil
		}
		if err != nil && !isCacheMiss(err) {
			s.logger.WithError(err).Warn("report cache read failed, querying database", "report", slug)
		}
	}

	start := time.Now()
	table, err := s.build(ctx, e)
	metrics.ReportQueryDuration.WithLabelValues(slug).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReportErrorsTotal.WithLabelValues(slug).Inc()
		s.logger.WithError(err).Error("report query failed", "report", slug)
		return nil, err
	}
	metrics.ReportRequestsTotal.WithLabelValues(slug, sourceDB).Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, slug, *table); err != nil {
			s.logger.WithError(err).Warn("report cache write failed", "report", slug)
		}
	}
	return table, nil
}

func (s *Service) build(ctx context.Context, e entry) (*Table, error) {
	if e.count == nil {
		return s.buildAll(ctx, e)
	}

	groups, err := e.count(s.repo, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", e.Slug, err)
	}

	table := &Table{
		Slug:    e.Slug,
		Title:   e.Title,
		Columns: []string{e.keyColumn, totalColumn},
		Rows:    make([][]Cell, 0, len(groups)),
	}
	for _, g := range groups {
		table.Rows = append(table.Rows, []Cell{
			textCell(g.Key),
			{Text: strconv.FormatInt(g.Total, 10)},
		})
	}
	return table, nil
}

var summaryColumns = []string{
	"ip", "host", "scan_date", "tags", "extracted_results",
	"cve_id", "cwe_id", "cvss_metrics", "cvss_score", "description", "remediation",
	"info_name", "info_author", "info_description", "info_reference",
	"info_severity", "info_metadata_product", "info_classification_cpe",
}

func (s *Service) buildAll(ctx context.Context, e entry) (*Table, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}

	table := &Table{
		Slug:    e.Slug,
		Title:   e.Title,
		Columns: summaryColumns,
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []Cell{
			textCell(r.IP),
			textCell(r.Host),
			textCell(r.ScanDate),
			textCell(r.Tags),
			textCell(r.ExtractedResults),
			textCell(r.CVEID),
			textCell(r.CWEID),
			textCell(r.CVSSMetrics),
			textCell(r.CVSSScore),
			textCell(r.Description),
			textCell(r.Remediation),
			textCell(r.InfoName),
			textCell(r.InfoAuthor),
			textCell(r.InfoDescription),
			s.referenceCell(r.InfoReference),
			textCell(r.InfoSeverity),
			textCell(r.InfoMetadataProduct),
			textCell(r.InfoClassificationCPE),
		})
	}
	return table, nil
}

func textCell(s *string) Cell {
	if s == nil {
		return Cell{Null: true}
	}
	return Cell{Text: *s}
}

// referenceCell expands a stored JSON array of references into links.
// Anything that is not an array stays plain text.
func (s *Service) referenceCell(raw *string) Cell {
	if raw == nil || *raw == "" {
		return textCell(raw)
	}
	v, err := nuclei.Decode([]byte(*raw))
	if err != nil {
		s.logger.WithError(err).Debug("info_reference is not JSON")
		return Cell{Text: *raw}
	}
	if v.Kind() != nuclei.KindArray {
		return Cell{Text: *raw}
	}

	links := make([]string, 0, v.Len())
	for _, el := range v.Elements() {
		if str, ok := el.Str(); ok {
			links = append(links, str)
			continue
		}
		links = append(links, el.JSON())
	}
	return Cell{Text: *raw, Links: links}
}
