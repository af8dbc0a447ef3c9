package report

import (
	"context"

	"github.com/openctemio/scanhistory/pkg/domain/finding"
)

// Report slugs served by the report server.
const (
	SlugTotal      = "total-vulnerabilities"
	SlugByIP       = "vulnerabilities-by-ip"
	SlugByHost     = "vulnerabilities-by-host"
	SlugBySeverity = "vulnerabilities-by-severity"
	SlugByTemplate = "vulnerabilities-by-template"
	SlugAll        = "all-vulnerabilities"
)

// totalColumn names the count column of every aggregate report.
const totalColumn = "total_vulnerabilities"

// Definition describes one entry of the report catalogue.
type Definition struct {
	Slug  string
	Label string // menu text
	Title string // table heading
}

type aggregate func(repo finding.ReportRepository, ctx context.Context) ([]finding.GroupCount, error)

type entry struct {
	Definition
	keyColumn string
	count     aggregate
}

var catalogue = []entry{
	{
		Definition: Definition{SlugTotal, "Total Vulnerabilities by Scan", "Total Vulnerabilities by Scan (grouped by date)"},
		keyColumn:  "scan_date",
		count:      finding.ReportRepository.CountByScanDate,
	},
	{
		Definition: Definition{SlugByIP, "Vulnerabilities by IP", "Vulnerabilities by IP"},
		keyColumn:  "ip",
		count:      finding.ReportRepository.CountByIP,
	},
	{
		Definition: Definition{SlugByHost, "Vulnerabilities by Host", "Vulnerabilities by Host"},
		keyColumn:  "host",
		count:      finding.ReportRepository.CountByHost,
	},
	{
		Definition: Definition{SlugBySeverity, "Vulnerabilities by Severity", "Vulnerabilities by Severity"},
		keyColumn:  "severity",
		count:      finding.ReportRepository.CountBySeverity,
	},
	{
		Definition: Definition{SlugByTemplate, "Vulnerabilities by Template ID", "Vulnerabilities by Template ID"},
		keyColumn:  "template",
		count:      finding.ReportRepository.CountByTemplate,
	},
	{
		Definition: Definition{SlugAll, "All Vulnerabilities", "All Vulnerability Details"},
	},
}

// Catalogue returns the report definitions in menu order.
func Catalogue() []Definition {
	defs := make([]Definition, len(catalogue))
	for i, e := range catalogue {
		defs[i] = e.Definition
	}
	return defs
}

func lookup(slug string) (entry, bool) {
	for _, e := range catalogue {
		if e.Slug == slug {
			return e, true
		}
	}
	return entry{}, false
}

// Table is a rendered report.
type Table struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Cell is one table value. Null marks an SQL NULL; Links is set when the
// value is a list of references.
type Cell struct {
	Text  string   `json:"text,omitempty"`
	Null  bool     `json:"null,omitempty"`
	Links []string `json:"links,omitempty"`
}

// Cache stores rendered tables by slug.
type Cache interface {
	Get(ctx context.Context, key string) (*Table, error)
	Set(ctx context.Context, key string, value Table) error
}

// CachePrefix is the key prefix of cached report tables.
const CachePrefix = "report"
