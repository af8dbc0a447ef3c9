package finding

import "context"

// Sink is the write side of the finding store. A run uses it as
//
//	EnsureSchema? -> ClearAll? -> Prepare -> Insert* -> Close
//
// and must call Close exactly once, whatever happened before.
type Sink interface {
	// EnsureSchema creates the findings table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// ClearAll deletes every stored finding.
	ClearAll(ctx context.Context) error

	// Prepare readies the insert statement reused by every Insert.
	Prepare(ctx context.Context) error

	// Insert stores one finding atomically.
	Insert(ctx context.Context, f *Finding) error

	// Close releases the prepared statement and the store handle.
	Close() error
}

// GroupCount is one row of an aggregate report.
type GroupCount struct {
	Key   *string `json:"key"`
	Total int64   `json:"total"`
}

// Summary is the projection listed by the all-findings report.
type Summary struct {
	IP                    *string `json:"ip"`
	Host                  *string `json:"host"`
	ScanDate              *string `json:"scan_date"`
	Tags                  *string `json:"tags"`
	ExtractedResults      *string `json:"extracted_results"`
	CVEID                 *string `json:"cve_id"`
	CWEID                 *string `json:"cwe_id"`
	CVSSMetrics           *string `json:"cvss_metrics"`
	CVSSScore             *string `json:"cvss_score"`
	Description           *string `json:"description"`
	Remediation           *string `json:"remediation"`
	InfoName              *string `json:"info_name"`
	InfoAuthor            *string `json:"info_author"`
	InfoDescription       *string `json:"info_description"`
	InfoReference         *string `json:"info_reference"`
	InfoSeverity          *string `json:"info_severity"`
	InfoMetadataProduct   *string `json:"info_metadata_product"`
	InfoClassificationCPE *string `json:"info_classification_cpe"`
}

// ReportRepository is the read side of the finding store.
type ReportRepository interface {
	// CountByScanDate groups findings by the calendar date of their timestamp, oldest first.
	CountByScanDate(ctx context.Context) ([]GroupCount, error)
	// CountByIP groups findings by ip, largest group first.
	CountByIP(ctx context.Context) ([]GroupCount, error)
	// CountByHost groups findings by host, largest group first.
	CountByHost(ctx context.Context) ([]GroupCount, error)
	// CountBySeverity groups findings by severity, largest group first.
	CountBySeverity(ctx context.Context) ([]GroupCount, error)
	// CountByTemplate groups findings by template id, largest group first.
	CountByTemplate(ctx context.Context) ([]GroupCount, error)
	// ListAll returns the summary projection of every finding.
	ListAll(ctx context.Context) ([]Summary, error)
	// Count returns the number of stored findings.
	Count(ctx context.Context) (int64, error)
}
