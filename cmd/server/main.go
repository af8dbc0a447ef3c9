package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/openctemio/scanhistory/internal/config"
	"github.com/openctemio/scanhistory/internal/infra/database"
	"github.com/openctemio/scanhistory/internal/infra/http"
	"github.com/openctemio/scanhistory/internal/infra/http/routes"
	"github.com/openctemio/scanhistory/internal/infra/redis"
	"github.com/openctemio/scanhistory/pkg/logger"
)

// Command line flags.
var (
	showRoutes = flag.Bool("routes", false, "Print all registered routes and exit")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ==========================================================================
	// Configuration & Logger
	// ==========================================================================
	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.WithError(err).Error("failed to load configuration")
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	// ==========================================================================
	// Infrastructure
	// ==========================================================================
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return 1
	}
	defer closeWithLog(db, "database", log)
	log.Info("database connected", "driver", cfg.Database.Driver)

	// Redis is optional: without it reports are always read from the database.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(&cfg.Redis, log)
		if err != nil {
			log.WithError(err).Error("failed to connect to redis")
			return 1
		}
		defer closeWithLog(redisClient, "redis", log)
	}

	// ==========================================================================
	// Services & Handlers
	// ==========================================================================
	reports, err := NewReportService(cfg, db, redisClient, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize report service")
		return 1
	}
	handlers := NewHandlers(cfg, db, redisClient, reports, log)

	// ==========================================================================
	// HTTP Server
	// ==========================================================================
	server := http.NewServer(cfg, log)
	routes.Register(server.Router(), handlers)

	if *showRoutes {
		_ = server.Router().Walk(func(method, path string) error {
			fmt.Printf("%-6s %s\n", method, path)
			return nil
		})
		return 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("server error")
		return 1
	}

	log.Info("application stopped")
	return 0
}

// =============================================================================
// Helper Functions
// =============================================================================

func initLogger(cfg *config.Config) *logger.Logger {
	var log *logger.Logger
	if cfg.IsProduction() {
		// SamplingThreshold is validated to be non-negative in config validation
		//nolint:gosec // G115: safe conversion, value validated non-negative in config.Validate()
		threshold := uint64(cfg.Log.SamplingThreshold)
		log = logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: "json",
			Output: os.Stdout,
			Sampling: logger.SamplingConfig{
				Enabled:   cfg.Log.SamplingEnabled,
				Threshold: threshold,
				Rate:      cfg.Log.SamplingRate,
			},
		})
	} else {
		log = logger.New(logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: os.Stderr,
		})
	}
	log.SetDefault()
	return log
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.WithError(err).Error("failed to close " + name)
	}
}
