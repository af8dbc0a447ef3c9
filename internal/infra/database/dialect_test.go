package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite untouched", SQLite, "INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES (?, ?)"},
		{"postgres numbered", Postgres, "INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"postgres no params", Postgres, "DELETE FROM t", "DELETE FROM t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Rebind(tt.query))
		})
	}
}

func TestDialect_ScanDate(t *testing.T) {
	assert.Equal(t, "DATE(timestamp)", SQLite.ScanDate("timestamp"))
	assert.Equal(t, "substring(timestamp from 1 for 10)", Postgres.ScanDate("timestamp"))
}

func TestInsertSQL(t *testing.T) {
	q := Postgres.Rebind(insertSQL())
	assert.Contains(t, q, "INSERT INTO scan_history (id, template, host, ip, timestamp,")
	assert.Contains(t, q, "$38)")
	assert.NotContains(t, q, "$39")
}

func TestDialectFor(t *testing.T) {
	d, err := dialectFor("postgres")
	assert.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = dialectFor("mysql")
	assert.Error(t, err)
}
