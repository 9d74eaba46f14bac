package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsbridge/internal/config"
	"smsbridge/internal/constants"
	"smsbridge/internal/database"
	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/models"
	"smsbridge/internal/retry"
	"smsbridge/internal/service"
	"smsbridge/internal/tracing"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("smsbridge %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting smsbridge")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(logger, cfg.LogLevel, *verbose)

	watcher := config.NewConfigWatcher(*configPath, logger)
	watcher.OnConfigChange(func(updated *models.Config) {
		applyLogLevel(logger, updated.LogLevel, *verbose)
	})
	go func() {
		if err := watcher.Start(ctx); err != nil {
			logger.WithError(err).Warn("Configuration watcher stopped")
		}
	}()
	currentConfig := func() *models.Config {
		if latest := watcher.GetConfig(); latest != nil {
			return latest
		}
		return cfg
	}

	tracingManager := tracing.NewTracingManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	channel := service.NewSmsChannel(cfg.Channel.Name, service.StoreReaderFactory(db, logger), logger)
	logger.WithFields(logrus.Fields{
		service.LogFieldChannel: channel.Name(),
		"methods":               channel.Methods(),
		"websocket":             cfg.Channel.WebSocketEnabled,
	}).Info("Channel endpoint registered")

	server := NewServer(currentConfig, &verboseChannel{ChannelHandler: channel, verbose: *verbose}, db, logger)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// openStore opens the message store, retrying while it is locked or busy.
func openStore(ctx context.Context, cfg *models.Config, logger *logrus.Logger) (*database.Database, error) {
	backoff := retry.NewBackoff(retry.FromRetryConfig(cfg.Retry))
	backoff.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.WithFields(logrus.Fields{
			service.LogFieldAttempt: attempt,
			"retry_in_ms":           delay.Milliseconds(),
		}).WithError(err).Warn("Failed to open message store, retrying")
	}

	var db *database.Database
	err := backoff.RetryWithPredicate(ctx, func() error {
		var openErr error
		db, openErr = database.New(cfg.Store.Path, &cfg.Store)
		return openErr
	}, func(err error) bool {
		return apperrors.IsRetryable(err) || database.IsRetryableError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open message store: %w", err)
	}

	logger.WithField("path", db.Path()).Info("Message store opened read-only")
	return db, nil
}

// applyLogLevel sets the level from config. --verbose always wins.
func applyLogLevel(logger *logrus.Logger, configured string, verbose bool) {
	if verbose {
		logger.SetLevel(logrus.TraceLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
		return
	}

	level := logrus.InfoLevel
	if configured != "" {
		parsed, err := logrus.ParseLevel(configured)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", configured)
		} else {
			level = parsed
		}
	}
	logger.SetLevel(level)
}

// verboseChannel marks every call context so the service layer may log
// unmasked message details.
type verboseChannel struct {
	ChannelHandler
	verbose bool
}

func (c *verboseChannel) Handle(ctx context.Context, method string) models.CommandResponse {
	return c.ChannelHandler.Handle(service.WithVerboseLogging(ctx, c.verbose), method)
}
