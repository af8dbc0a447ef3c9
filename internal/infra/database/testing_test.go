package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openctemio/scanhistory/internal/config"
	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
)

// openTestDB opens a fresh SQLite store in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "scan_history.db"),
		BusyTimeout: time.Second,
	})
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

// newFinding returns a finding with the grouping columns populated.
func newFinding(host, ip, severity, template, timestamp string) *finding.Finding {
	return &finding.Finding{
		ID:          shared.NewID(),
		Host:        strPtr(host),
		IP:          strPtr(ip),
		Severity:    strPtr(severity),
		Template:    strPtr(template),
		Timestamp:   strPtr(timestamp),
		CurlCommand: strPtr(""),
		Info: finding.Info{
			Severity: strPtr(severity),
			Tags:     strPtr(`["a","b"]`),
		},
	}
}
