package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openctemio/scanhistory/internal/config"
)

func TestOpen_SQLitePathWithURIDelimiters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan?mode=ro#1%.db")

	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", Path: path, BusyTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, NewFindingSink(db).EnsureSchema(context.Background()))

	_, err = os.Stat(path)
	require.NoError(t, err, "database file must be created at the configured path")
	_, err = os.Stat(filepath.Join(dir, "scan"))
	assert.True(t, os.IsNotExist(err))
}
