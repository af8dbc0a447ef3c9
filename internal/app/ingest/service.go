package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openctemio/scanhistory/internal/metrics"
	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
	"github.com/openctemio/scanhistory/pkg/linestream"
	"github.com/openctemio/scanhistory/pkg/logger"
	"github.com/openctemio/scanhistory/pkg/parsers/nuclei"
)

// Assembler turns one input line into a finding.
type Assembler interface {
	Assemble(line []byte) (*finding.Finding, error)
}

// Service runs ingestion. Lines are handled strictly one at a time: the next
// line is read only after the current one has been stored or rejected.
type Service struct {
	assembler Assembler
	logger    *logger.Logger
}

// NewService creates an ingest service. A nil assembler selects the nuclei one.
func NewService(assembler Assembler, log *logger.Logger) *Service {
	if assembler == nil {
		assembler = nuclei.NewAssembler()
	}
	return &Service{
		assembler: assembler,
		logger:    log.With("service", "ingest"),
	}
}

// =============================================================================
// Main Ingestion Methods
// =============================================================================

// CheckInput verifies that the input file exists before any store is opened.
func CheckInput(path string) error {
	ok, err := linestream.File(path).Exists()
	if err != nil {
		return shared.NewDomainError(CodeInputRead, fmt.Sprintf("cannot access '%s'", path), err)
	}
	if !ok {
		return shared.NewDomainError(CodeInputNotFound,
			fmt.Sprintf("The specified file '%s' does not exist.", path), finding.ErrInputNotFound)
	}
	return nil
}

// Run ingests every line of src into sink. It takes ownership of sink and
// closes it before returning.
//
// Setup failures (schema creation, clearing, statement preparation) and input
// failures abort the run and are returned. Lines that fail to parse or store
// are logged, counted in the Output and skipped.
func (s *Service) Run(ctx context.Context, src linestream.Source, sink finding.Sink, opts Options) (out *Output, err error) {
	start := time.Now()
	out = &Output{Source: fmt.Sprint(src)}
	log := s.logger.With("source", out.Source)

	defer func() {
		if cerr := sink.Close(); cerr != nil {
			log.WithError(cerr).Error("failed to close finding store")
			if err == nil {
				err = cerr
			}
		}
		out.Duration = time.Since(start)
		out.Completed = err == nil
		s.recordRun(out)
	}()

	if err := s.setup(ctx, sink, opts, log); err != nil {
		return out, err
	}

	log.Info("ingestion started", "create_schema", opts.CreateSchema, "clear_existing", opts.ClearExisting)

	for line, readErr := range linestream.Lines(src) {
		if readErr != nil {
			return out, inputError(out.Source, readErr)
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		out.LinesRead++
		if opts.Progress != nil {
			opts.Progress(line.Number)
		}
		log.Debug("processing line", "line", line.Number)

		s.processLine(ctx, line, sink, out, log)
	}

	log.Info("ingestion complete",
		"lines_read", out.LinesRead,
		"findings_inserted", out.FindingsInserted,
		"parse_errors", out.ParseErrors,
		"write_errors", out.WriteErrors,
		"lines_skipped", out.LinesSkipped,
		"duration", time.Since(start),
	)
	return out, nil
}

func (s *Service) setup(ctx context.Context, sink finding.Sink, opts Options, log *logger.Logger) error {
	if opts.CreateSchema {
		if err := sink.EnsureSchema(ctx); err != nil {
			log.WithError(err).Error("failed to create schema")
			return err
		}
		log.Info("schema ready")
	}
	if opts.ClearExisting {
		if err := sink.ClearAll(ctx); err != nil {
			log.WithError(err).Error("failed to delete existing records")
			return err
		}
		log.Info("existing records deleted")
	}
	if err := sink.Prepare(ctx); err != nil {
		log.WithError(err).Error("failed to prepare insert; run with schema creation enabled if the table does not exist")
		return err
	}
	return nil
}

// processLine stores one line. Failures only affect this line.
func (s *Service) processLine(ctx context.Context, line linestream.Line, sink finding.Sink, out *Output, log *logger.Logger) {
	if len(bytes.TrimSpace(line.Text)) == 0 {
		out.LinesSkipped++
		metrics.IngestLinesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return
	}

	f, err := s.assembler.Assemble(line.Text)
	if err != nil {
		lerr := finding.NewLineError(line.Number, err)
		out.ParseErrors++
		out.addFailure(line.Number, "parse", lerr)
		metrics.IngestLinesTotal.WithLabelValues(metrics.OutcomeParseError).Inc()
		log.WithError(err).Warn("skipping line: invalid JSON", "line", line.Number)
		return
	}

	if err := sink.Insert(ctx, f); err != nil {
		if !errors.Is(err, finding.ErrWrite) {
			err = fmt.Errorf("%w: %w", finding.ErrWrite, err)
		}
		lerr := finding.NewLineError(line.Number, err)
		out.WriteErrors++
		out.addFailure(line.Number, "write", lerr)
		metrics.IngestLinesTotal.WithLabelValues(metrics.OutcomeWriteError).Inc()
		log.WithError(err).Warn("skipping line: insert failed", "line", line.Number, "id", f.ID.String())
		return
	}

	out.FindingsInserted++
	metrics.IngestLinesTotal.WithLabelValues(metrics.OutcomeInserted).Inc()
}

func (s *Service) recordRun(out *Output) {
	status := "completed"
	if !out.Completed {
		status = "failed"
	}
	metrics.IngestRunsTotal.WithLabelValues(status).Inc()
	metrics.IngestRunDuration.Observe(out.Duration.Seconds())
}

func inputError(source string, err error) error {
	if errors.Is(err, linestream.ErrNotFound) {
		return shared.NewDomainError(CodeInputNotFound,
			fmt.Sprintf("The specified file '%s' does not exist.", source),
			fmt.Errorf("%w: %w", finding.ErrInputNotFound, err))
	}
	return shared.NewDomainError(CodeInputRead, fmt.Sprintf("failed to read '%s'", source), err)
}
