/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (defaults, config file, .env, PAYROLL_* env), then flags
  2. Build the logger and Prometheus recorder
  3. Open the employee store (memory, SQLite or PostgreSQL)
  4. Build the default notification channel
  5. Create payroll.System, API handler and router
  6. Start the scheduler (if enabled) and the server

COMMAND-LINE FLAGS:
  -config  Optional config file (yaml, toml or json)
  -port    HTTP server port, overrides server.port
  -db      SQLite database path, overrides store.sqlite_path
           Use ":memory:" for in-memory database
  -driver  Store driver, overrides store.driver

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the store
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Run with in-memory store and a scheduled monthly run
  PAYROLL_STORE_DRIVER=memory PAYROLL_SCHEDULER_ENABLED=true ./server

  # Run against PostgreSQL
  PAYROLL_STORE_DRIVER=postgres PAYROLL_STORE_POSTGRES_DSN=postgres://... ./server

SEE ALSO:
  - config/config.go: Keys and sources
  - api/server.go: Router configuration
  - payroll/system.go: The façade every handler calls
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/core"
	"github.com/warp/payroll-engine/core/store"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/notify"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Optional config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	driver := flag.String("driver", "", "Store driver: memory, sqlite or postgres (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, *port, *dbPath, *driver); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	rec, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}

	// Initialize store
	ctx := context.Background()
	employees, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to initialize store")
	}
	defer closeStore()

	// Notifications
	transport := notify.NewLogTransport(logger)
	settings := notifySettings(cfg.Notify)
	channel, err := notify.Build(cfg.Notify.Channel, settings, transport)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build notification channel")
	}

	sys := payroll.NewSystem(employees, channel, payroll.Options{
		Logger:  &logger,
		Metrics: rec,
	})

	handler := api.NewHandler(sys, api.HandlerOptions{
		Logger: &logger,
		Channels: func(kind string) (core.Channel, error) {
			return notify.Build(kind, settings, transport)
		},
	})
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:   &logger,
		Metrics:  rec,
		Gatherer: prometheus.DefaultGatherer,
	})

	scheduler := api.NewPayrollScheduler(sys, handler.Runs, &logger)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.Interval = cfg.Scheduler.Interval
	scheduler.Start()
	if scheduler.Enabled {
		logger.Info().
			Dur("interval", scheduler.Interval).
			Time("next_run", scheduler.NextRunTime()).
			Msg("payroll scheduler enabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Int("port", cfg.Server.Port).
			Str("store", cfg.Store.Driver).
			Str("channel", cfg.Notify.Channel).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// applyFlags overrides cfg with non-zero flag values and revalidates.
func applyFlags(cfg *config.Config, port int, dbPath, driver string) error {
	if port != 0 {
		cfg.Server.Port = port
	}
	if dbPath != "" {
		cfg.Store.SQLitePath = dbPath
	}
	if driver != "" {
		cfg.Store.Driver = driver
	}
	return cfg.Validate()
}

func notifySettings(c config.NotifyConfig) notify.Settings {
	return notify.Settings{
		Email: notify.EmailSettings{Host: c.SMTPHost, User: c.SMTPUser, Password: c.SMTPPassword},
		SMS:   notify.SMSSettings{APIKey: c.SMSAPIKey, APIURL: c.SMSAPIURL},
	}
}

// openStore opens the configured employee store. The returned func
// releases it.
func openStore(ctx context.Context, c config.StoreConfig) (core.EmployeeStore, func(), error) {
	switch c.Driver {
	case config.DriverMemory:
		return store.NewMemory(), func() {}, nil

	case config.DriverSQLite:
		s, err := sqlite.New(c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		s := postgres.New(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil

	default:
		return nil, nil, &core.ConfigError{Message: fmt.Sprintf("unknown store driver %q", c.Driver)}
	}
}
