package database

import (
	"strings"

	"github.com/openctemio/scanhistory/pkg/domain/finding"
)

const tableName = "scan_history"

// column maps one scan_history column to its finding field.
type column struct {
	name  string
	value func(f *finding.Finding) *string
}

// columns lists scan_history in table order; id is handled separately.
var columns = []column{
	{"template", func(f *finding.Finding) *string { return f.Template }},
	{"host", func(f *finding.Finding) *string { return f.Host }},
	{"ip", func(f *finding.Finding) *string { return f.IP }},
	{"timestamp", func(f *finding.Finding) *string { return f.Timestamp }},
	{"severity", func(f *finding.Finding) *string { return f.Severity }},
	{"curl_command", func(f *finding.Finding) *string { return f.CurlCommand }},
	{"extractor_name", func(f *finding.Finding) *string { return f.ExtractorName }},
	{"extracted_results", func(f *finding.Finding) *string { return f.ExtractedResults }},
	{"cve_id", func(f *finding.Finding) *string { return f.CVEID }},
	{"cwe_id", func(f *finding.Finding) *string { return f.CWEID }},
	{"cvss_metrics", func(f *finding.Finding) *string { return f.CVSSMetrics }},
	{"cvss_score", func(f *finding.Finding) *string { return f.CVSSScore }},
	{"description", func(f *finding.Finding) *string { return f.Description }},
	{"remediation", func(f *finding.Finding) *string { return f.Remediation }},
	{"info_name", func(f *finding.Finding) *string { return f.Info.Name }},
	{"info_author", func(f *finding.Finding) *string { return f.Info.Author }},
	{"info_tags", func(f *finding.Finding) *string { return f.Info.Tags }},
	{"info_description", func(f *finding.Finding) *string { return f.Info.Description }},
	{"info_reference", func(f *finding.Finding) *string { return f.Info.Reference }},
	{"info_severity", func(f *finding.Finding) *string { return f.Info.Severity }},
	{"info_metadata_vendor", func(f *finding.Finding) *string { return f.Info.MetadataVendor }},
	{"info_metadata_product", func(f *finding.Finding) *string { return f.Info.MetadataProduct }},
	{"info_metadata_max_request", func(f *finding.Finding) *string { return f.Info.MetadataMaxRequest }},
	{"info_metadata_epss_score", func(f *finding.Finding) *string { return f.Info.MetadataEPSSScore }},
	{"info_classification_cve_id", func(f *finding.Finding) *string { return f.Info.ClassificationCVEID }},
	{"info_classification_cwe_id", func(f *finding.Finding) *string { return f.Info.ClassificationCWEID }},
	{"info_classification_cvss_metrics", func(f *finding.Finding) *string { return f.Info.ClassificationCVSSMetrics }},
	{"info_classification_cvss_score", func(f *finding.Finding) *string { return f.Info.ClassificationCVSSScore }},
	{"info_classification_epss_score", func(f *finding.Finding) *string { return f.Info.ClassificationEPSSScore }},
	{"info_classification_cpe", func(f *finding.Finding) *string { return f.Info.ClassificationCPE }},
	{"type", func(f *finding.Finding) *string { return f.Type }},
	{"matched_at", func(f *finding.Finding) *string { return f.MatchedAt }},
	{"request", func(f *finding.Finding) *string { return f.Request }},
	{"response", func(f *finding.Finding) *string { return f.Response }},
	{"matcher_status", func(f *finding.Finding) *string { return f.MatcherStatus }},
	{"matcher_name", func(f *finding.Finding) *string { return f.MatcherName }},
	{"meta", func(f *finding.Finding) *string { return f.Meta }},
}

// ColumnNames returns every scan_history column in table order, id first.
func ColumnNames() []string {
	names := make([]string, 0, len(columns)+1)
	names = append(names, "id")
	for _, c := range columns {
		names = append(names, c.name)
	}
	return names
}

// createTableSQL builds the idempotent CREATE TABLE statement. All columns are
// TEXT; the timestamp in particular is kept exactly as the scanner wrote it.
func createTableSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(tableName)
	sb.WriteString(" (\n\tid TEXT PRIMARY KEY")
	for _, c := range columns {
		sb.WriteString(",\n\t")
		sb.WriteString(c.name)
		sb.WriteString(" TEXT")
	}
	sb.WriteString("\n)")
	return sb.String()
}

// insertSQL builds the parameterized INSERT with ? placeholders.
func insertSQL() string {
	names := ColumnNames()
	return "INSERT INTO " + tableName + " (" + strings.Join(names, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ") + ")"
}

// insertArgs returns the INSERT arguments for f in column order.
func insertArgs(f *finding.Finding) []any {
	args := make([]any, 0, len(columns)+1)
	args = append(args, f.ID.String())
	for _, c := range columns {
		args = append(args, nullText(c.value(f)))
	}
	return args
}
