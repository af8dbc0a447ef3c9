package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
)

// Error codes attached to fatal sink errors.
const (
	CodeSchema = "SCHEMA_ERROR"
	CodeClear  = "CLEAR_ERROR"
)

// FindingSink writes findings into scan_history. It owns the DB handle and
// closes it in Close.
type FindingSink struct {
	db        *DB
	stmt      *sql.Stmt
	closeOnce sync.Once
	closeErr  error
}

var _ finding.Sink = (*FindingSink)(nil)

// NewFindingSink creates a sink over db.
func NewFindingSink(db *DB) *FindingSink {
	return &FindingSink{db: db}
}

// EnsureSchema creates scan_history if it does not exist.
func (s *FindingSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL()); err != nil {
		return shared.NewDomainError(CodeSchema, "failed to create "+tableName+" table",
			fmt.Errorf("%w: %w", finding.ErrSchema, err))
	}
	return nil
}

// ClearAll deletes every row of scan_history.
func (s *FindingSink) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+tableName); err != nil {
		return shared.NewDomainError(CodeClear, "failed to delete existing records",
			fmt.Errorf("%w: %w", finding.ErrClear, err))
	}
	return nil
}

// Prepare compiles the insert statement once for the whole run. It fails when
// the table is missing.
func (s *FindingSink) Prepare(ctx context.Context) error {
	if s.stmt != nil {
		return nil
	}
	stmt, err := s.db.PrepareContext(ctx, s.db.Dialect().Rebind(insertSQL()))
	if err != nil {
		return shared.NewDomainError(CodeSchema, "failed to prepare insert into "+tableName,
			fmt.Errorf("%w: %w", finding.ErrSchema, err))
	}
	s.stmt = stmt
	return nil
}

// Insert stores f with the prepared statement. Each call commits on its own,
// so a failed row leaves earlier and later rows intact.
func (s *FindingSink) Insert(ctx context.Context, f *finding.Finding) error {
	if s.stmt == nil {
		return fmt.Errorf("%w: insert statement is not prepared", finding.ErrWrite)
	}
	if _, err := s.stmt.ExecContext(ctx, insertArgs(f)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate id %s: %w", finding.ErrWrite, f.ID, err)
		}
		return fmt.Errorf("%w: %w", finding.ErrWrite, err)
	}
	return nil
}

// Close finalizes the prepared statement and closes the store. Calls after
// the first return the first result.
func (s *FindingSink) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.stmt != nil {
			if err := s.stmt.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to finalize insert statement: %w", err))
			}
		}
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
