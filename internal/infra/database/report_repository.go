package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openctemio/scanhistory/pkg/domain/finding"
)

// ReportRepository runs the aggregate report queries.
type ReportRepository struct {
	db *DB
}

var _ finding.ReportRepository = (*ReportRepository)(nil)

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CountByScanDate implements finding.ReportRepository.
func (r *ReportRepository) CountByScanDate(ctx context.Context) ([]finding.GroupCount, error) {
	return r.countBy(ctx, r.db.Dialect().ScanDate("timestamp"), "group_key ASC")
}

// CountByIP implements finding.ReportRepository.
func (r *ReportRepository) CountByIP(ctx context.Context) ([]finding.GroupCount, error) {
	return r.countBy(ctx, "ip", byTotalDesc)
}

// CountByHost implements finding.ReportRepository.
func (r *ReportRepository) CountByHost(ctx context.Context) ([]finding.GroupCount, error) {
	return r.countBy(ctx, "host", byTotalDesc)
}

// CountBySeverity implements finding.ReportRepository.
func (r *ReportRepository) CountBySeverity(ctx context.Context) ([]finding.GroupCount, error) {
	return r.countBy(ctx, "severity", byTotalDesc)
}

// CountByTemplate implements finding.ReportRepository.
func (r *ReportRepository) CountByTemplate(ctx context.Context) ([]finding.GroupCount, error) {
	return r.countBy(ctx, "template", byTotalDesc)
}

const byTotalDesc = "total DESC, group_key ASC"

// countBy groups on expr, which is always a package constant.
func (r *ReportRepository) countBy(ctx context.Context, expr, orderBy string) ([]finding.GroupCount, error) {
	query := fmt.Sprintf(
		"SELECT %s AS group_key, COUNT(*) AS total FROM %s GROUP BY %s ORDER BY %s",
		expr, tableName, expr, orderBy,
	)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings by %s: %w", expr, err)
	}
	defer rows.Close()

	var result []finding.GroupCount
	for rows.Next() {
		var (
			gc  finding.GroupCount
			key sql.NullString
		)
		if err := rows.Scan(&key, &gc.Total); err != nil {
			return nil, fmt.Errorf("failed to scan group count: %w", err)
		}
		gc.Key = textPtr(key)
		result = append(result, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group counts: %w", err)
	}
	return result, nil
}

// ListAll implements finding.ReportRepository.
func (r *ReportRepository) ListAll(ctx context.Context) ([]finding.Summary, error) {
	query := `SELECT ip, host, ` + r.db.Dialect().ScanDate("timestamp") + ` AS scan_date,
		info_tags AS tags, extracted_results, cve_id, cwe_id, cvss_metrics, cvss_score,
		description, remediation, info_name, info_author, info_description,
		info_reference, info_severity, info_metadata_product, info_classification_cpe
		FROM ` + tableName + ` ORDER BY timestamp, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var result []finding.Summary
	for rows.Next() {
		var c [18]sql.NullString
		dest := make([]any, len(c))
		for i := range c {
			dest[i] = &c[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		result = append(result, finding.Summary{
			IP:                    textPtr(c[0]),
			Host:                  textPtr(c[1]),
			ScanDate:              textPtr(c[2]),
			Tags:                  textPtr(c[3]),
			ExtractedResults:      textPtr(c[4]),
			CVEID:                 textPtr(c[5]),
			CWEID:                 textPtr(c[6]),
			CVSSMetrics:           textPtr(c[7]),
			CVSSScore:             textPtr(c[8]),
			Description:           textPtr(c[9]),
			Remediation:           textPtr(c[10]),
			InfoName:              textPtr(c[11]),
			InfoAuthor:            textPtr(c[12]),
			InfoDescription:       textPtr(c[13]),
			InfoReference:         textPtr(c[14]),
			InfoSeverity:          textPtr(c[15]),
			InfoMetadataProduct:   textPtr(c[16]),
			InfoClassificationCPE: textPtr(c[17]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate findings: %w", err)
	}
	return result, nil
}

// Count implements finding.ReportRepository.
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count findings: %w", err)
	}
	return n, nil
}
