package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
)

func TestFindingSink_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sink := NewFindingSink(db)
	reports := NewReportRepository(db)

	require.NoError(t, sink.EnsureSchema(ctx))
	require.NoError(t, sink.EnsureSchema(ctx), "schema creation must be idempotent")
	require.NoError(t, sink.Prepare(ctx))

	line := newFinding("example.com", "10.0.0.1", "high", "tech-detect", "2024-03-07T10:15:30Z")
	require.NoError(t, sink.Insert(ctx, line))
	require.NoError(t, sink.Insert(ctx, newFinding("example.com", "10.0.0.1", "high", "tech-detect", "2024-03-07T10:15:30Z")))

	n, err := reports.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, sink.ClearAll(ctx))
	n, err = reports.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "second close is a no-op")
}

func TestFindingSink_SingleTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sink := NewFindingSink(db)
	defer sink.Close()

	require.NoError(t, sink.EnsureSchema(ctx))
	require.NoError(t, sink.EnsureSchema(ctx))

	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'scan_history'").Scan(&tables))
	assert.Equal(t, 1, tables)

	rows, err := db.QueryContext(ctx, "SELECT name, type, pk FROM pragma_table_info('scan_history') ORDER BY cid")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			name, typ string
			pk        int
		)
		require.NoError(t, rows.Scan(&name, &typ, &pk))
		assert.Equal(t, "TEXT", typ)
		assert.Equal(t, name == "id", pk == 1)
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, ColumnNames(), names)
	assert.Len(t, names, 38)
}

func TestFindingSink_StoresNullsAndText(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sink := NewFindingSink(db)
	defer sink.Close()

	require.NoError(t, sink.EnsureSchema(ctx))
	require.NoError(t, sink.Prepare(ctx))

	f := &finding.Finding{
		ID:          shared.NewID(),
		IP:          strPtr(finding.DefaultIP),
		CurlCommand: strPtr("curl ''x''"),
		Info:        finding.Info{Tags: strPtr(`["a","b"]`)},
	}
	require.NoError(t, sink.Insert(ctx, f))

	var (
		id, ip, curl, tags string
		host               sql.NullString
	)
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT id, ip, curl_command, info_tags, host FROM scan_history").Scan(&id, &ip, &curl, &tags, &host))

	assert.Equal(t, f.ID.String(), id)
	assert.Equal(t, "0.0.0.0", ip)
	assert.Equal(t, "curl ''x''", curl)
	assert.Equal(t, `["a","b"]`, tags)
	assert.False(t, host.Valid, "absent fields are NULL")
}

func TestFindingSink_InsertRequiresPrepare(t *testing.T) {
	ctx := context.Background()
	sink := NewFindingSink(openTestDB(t))
	defer sink.Close()

	require.NoError(t, sink.EnsureSchema(ctx))

	err := sink.Insert(ctx, newFinding("h", "i", "low", "t", "2024-01-01T00:00:00Z"))
	assert.ErrorIs(t, err, finding.ErrWrite)
}

func TestFindingSink_PrepareWithoutTable(t *testing.T) {
	sink := NewFindingSink(openTestDB(t))
	defer sink.Close()

	err := sink.Prepare(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, finding.ErrSchema)
	assert.Equal(t, CodeSchema, shared.ErrorCode(err))
}

func TestFindingSink_DuplicateIDIsWriteError(t *testing.T) {
	ctx := context.Background()
	sink := NewFindingSink(openTestDB(t))
	defer sink.Close()

	require.NoError(t, sink.EnsureSchema(ctx))
	require.NoError(t, sink.Prepare(ctx))

	f := newFinding("h", "i", "low", "t", "2024-01-01T00:00:00Z")
	require.NoError(t, sink.Insert(ctx, f))

	err := sink.Insert(ctx, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, finding.ErrWrite)
	assert.True(t, isUniqueViolation(err))
	assert.Contains(t, err.Error(), "duplicate id")

	// The failed insert does not affect later ones.
	require.NoError(t, sink.Insert(ctx, newFinding("h", "i", "low", "t", "2024-01-01T00:00:00Z")))
}

// withMockSink runs fn against a PostgreSQL-dialect sink backed by sqlmock.
func withMockSink(t *testing.T, fn func(*FindingSink, sqlmock.Sqlmock)) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sink := NewFindingSink(Wrap(db, Postgres))
	fn(sink, mock)

	mock.ExpectClose()
	require.NoError(t, sink.Close())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestFindingSink_Postgres(t *testing.T) {
	ctx := context.Background()

	t.Run("EnsureSchema", func(t *testing.T) {
		withMockSink(t, func(sink *FindingSink, mock sqlmock.Sqlmock) {
			mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS scan_history")).
				WillReturnResult(sqlmock.NewResult(0, 0))

			assert.NoError(t, sink.EnsureSchema(ctx))
		})
	})

	t.Run("EnsureSchema error", func(t *testing.T) {
		withMockSink(t, func(sink *FindingSink, mock sqlmock.Sqlmock) {
			mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

			err := sink.EnsureSchema(ctx)
			assert.ErrorIs(t, err, finding.ErrSchema)
			assert.False(t, finding.IsRecoverable(err))
		})
	})

	t.Run("ClearAll error", func(t *testing.T) {
		withMockSink(t, func(sink *FindingSink, mock sqlmock.Sqlmock) {
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scan_history")).
				WillReturnError(errors.New("relation \"scan_history\" does not exist"))

			err := sink.ClearAll(ctx)
			assert.ErrorIs(t, err, finding.ErrClear)
			assert.Equal(t, CodeClear, shared.ErrorCode(err))
		})
	})

	t.Run("Insert uses numbered placeholders", func(t *testing.T) {
		withMockSink(t, func(sink *FindingSink, mock sqlmock.Sqlmock) {
			f := newFinding("example.com", "10.0.0.1", "high", "tech-detect", "2024-03-07T10:15:30Z")
			args := anyArgs(38)
			args[0] = f.ID.String()

			prep := mock.ExpectPrepare(regexp.QuoteMeta("VALUES ($1, $2, $3,") + ".*" + regexp.QuoteMeta("$38)"))
			prep.ExpectExec().WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
			prep.WillBeClosed()

			require.NoError(t, sink.Prepare(ctx))
			require.NoError(t, sink.Prepare(ctx), "prepare is done once")
			assert.NoError(t, sink.Insert(ctx, f))
		})
	})

	t.Run("Insert error is recoverable", func(t *testing.T) {
		withMockSink(t, func(sink *FindingSink, mock sqlmock.Sqlmock) {
			prep := mock.ExpectPrepare("INSERT INTO scan_history")
			prep.ExpectExec().WithArgs(anyArgs(38)...).WillReturnError(errors.New("disk full"))

			require.NoError(t, sink.Prepare(ctx))
			err := sink.Insert(ctx, newFinding("h", "i", "low", "t", "x"))
			assert.ErrorIs(t, err, finding.ErrWrite)
			assert.True(t, finding.IsRecoverable(err))
		})
	})
}
