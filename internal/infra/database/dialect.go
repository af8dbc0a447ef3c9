package database

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour of a store.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// Rebind rewrites ? placeholders into the dialect's form. Queries in this
// package never contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// ScanDate returns an expression for the calendar date (YYYY-MM-DD) of an
// ISO-8601 text column. SQLite normalizes to UTC; PostgreSQL keeps the date
// as written, since the column is text and may hold malformed values.
func (d Dialect) ScanDate(column string) string {
	if d == Postgres {
		return "substring(" + column + " from 1 for 10)"
	}
	return "DATE(" + column + ")"
}
