// Package cmd implements the ingest command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openctemio/scanhistory/internal/app/ingest"
	"github.com/openctemio/scanhistory/internal/app/report"
	"github.com/openctemio/scanhistory/internal/config"
	"github.com/openctemio/scanhistory/internal/infra/database"
	"github.com/openctemio/scanhistory/internal/infra/redis"
	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/linestream"
	"github.com/openctemio/scanhistory/pkg/logger"
	"github.com/openctemio/scanhistory/pkg/validator"
)

var version string

// options holds the parsed flags of one invocation.
type options struct {
	create   bool
	clear    bool
	driver   string
	dsn      string
	output   string
	quiet    bool
	verbose  bool
	logLevel string
}

// Execute runs the root command with os.Args.
func Execute() error {
	return newRootCmd(os.Stdout, os.Stderr).Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

// Reported reports whether err was already printed to the user.
func Reported(err error) bool {
	return errors.Is(err, errReported)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ingest [flags] <path>",
		Short: "Load nuclei JSONL results into the scan history store",
		Long: `ingest reads a nuclei JSON-lines result file (optionally gzip or zstd
compressed) and stores one row per finding in the scan_history table.

Lines that are not valid JSON objects, or that fail to insert, are reported
and skipped; the run continues with the next line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, args[0], opts, stdout, stderr)
		},
	}

	flags := root.Flags()
	flags.BoolVarP(&opts.create, "create", "c", false, "Create the scan_history table if it does not exist")
	flags.BoolVarP(&opts.clear, "delete", "d", false, "Delete all existing records before ingesting")
	flags.StringVar(&opts.driver, "db-driver", "", "Database driver: sqlite or postgres (env: DB_DRIVER)")
	flags.StringVar(&opts.dsn, "db-dsn", "", "SQLite file path or PostgreSQL URL (env: DB_PATH / DATABASE_URL)")
	flags.StringVarP(&opts.output, "output", "o", "", "Print a run summary: table, json, yaml")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress per-line progress")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level override (env: LOG_LEVEL)")

	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(versionCmd(stdout))
	return root
}

func versionCmd(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(w, "ingest version %s\n", version)
			fmt.Fprintf(w, "  Go:       %s\n", runtime.Version())
			fmt.Fprintf(w, "  OS/Arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func run(ctx context.Context, path string, opts *options, stdout, stderr io.Writer) error {
	if err := validateOutput(opts.output); err != nil {
		return err
	}

	// The input is checked before any store is opened or modified.
	if err := ingest.CheckInput(path); err != nil {
		if errors.Is(err, finding.ErrInputNotFound) {
			fmt.Fprintf(stderr, "The specified file '%s' does not exist.\n", path)
			return errReported
		}
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(cfg, opts, stderr)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	sink := database.NewFindingSink(db)

	runOpts := ingest.Options{
		CreateSchema:  opts.create,
		ClearExisting: opts.clear,
	}
	if !opts.quiet {
		runOpts.Progress = func(line int) {
			fmt.Fprintf(stderr, "Processing line %d of the file...\n", line)
		}
	}

	svc := ingest.NewService(nil, log)
	out, err := svc.Run(ctx, linestream.File(path), sink, runOpts)
	if err != nil {
		return err
	}

	purgeReportCache(ctx, cfg, log)

	if opts.output != "" {
		if err := printOutput(stdout, opts.output, out); err != nil {
			return err
		}
	}
	if !opts.quiet {
		fmt.Fprintln(stderr, "Done.")
	}
	return nil
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if opts.driver != "" {
		cfg.Database.Driver = opts.driver
	}
	if opts.dsn != "" {
		if cfg.Database.Driver == validator.DriverPostgres {
			cfg.Database.URL = opts.dsn
		} else {
			cfg.Database.Path = opts.dsn
		}
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	} else if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, opts *options, w io.Writer) *logger.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: w,
		Sampling: logger.SamplingConfig{
			Enabled:   cfg.Log.SamplingEnabled && !opts.verbose,
			Threshold: uint64(cfg.Log.SamplingThreshold),
			Rate:      cfg.Log.SamplingRate,
		},
	})
}

// purgeReportCache drops cached reports so the server shows the new rows.
// Failures are logged; the ingested data is already committed.
func purgeReportCache(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	if !cfg.Redis.Enabled {
		return
	}

	client, err := redis.New(&cfg.Redis, log)
	if err != nil {
		log.WithError(err).Warn("report cache unavailable, cached reports expire on their own")
		return
	}
	defer func() { _ = client.Close() }()

	cache, err := redis.NewCache[struct{}](client, report.CachePrefix, cfg.Report.CacheTTL)
	if err != nil {
		log.WithError(err).Warn("report cache disabled")
		return
	}

	n, err := cache.Purge(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to purge report cache")
		return
	}
	log.Debug("report cache purged", "keys", n)
}

// errReported marks an error whose message was already printed.
var errReported = errors.New("input file not found")
