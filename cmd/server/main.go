package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/api"
	"github.com/symptom-triage-server/internal/config"
	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/feedback"
	"github.com/symptom-triage-server/internal/monitoring"
	"github.com/symptom-triage-server/internal/service"
	"github.com/symptom-triage-server/internal/session"
)

func main() {
	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(configManager, logger, os.Args[2:]); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		return
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// SIGHUP re-reads the configuration and applies the new log settings
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)
	go config.ReloadOnSignal(ctx, configManager, logger, hangup)

	store, err := openFeedbackStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open feedback store")
	}
	if store != nil {
		defer store.Close()
	}

	sessions, err := session.NewManager(cfg.Session.MaxSessions, session.Options{ReplyDelay: cfg.Chat.ReplyDelay}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create session registry")
	}

	metrics := monitoring.NewMetrics("triage")
	svc := service.NewTriageService(logger, sessions, store, metrics)

	server, err := api.NewServer(configManager, svc, metrics, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	logger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"feedback":    cfg.Feedback.Backend,
	}).Info("Starting symptom triage server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// openFeedbackStore builds the configured feedback backend. It returns nil
// when feedback is disabled.
func openFeedbackStore(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (feedback.Store, error) {
	switch cfg.Feedback.Backend {
	case "none":
		logger.Info("Clinician feedback disabled")
		return nil, nil

	case "sqlite":
		store, err := feedback.NewSQLiteStore(cfg.Feedback.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.Feedback.SQLitePath).Info("Using SQLite feedback store")
		return store, nil

	case "postgres":
		if cfg.Feedback.MigrateOnStartup {
			if err := migrateUp(ctx, cfg, logger); err != nil {
				return nil, err
			}
		}
		store, err := feedback.NewPostgresStoreFromConfig(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Database,
		}).Info("Using PostgreSQL feedback store")
		return feedback.NewResilientStore(store, feedback.BreakerConfig{
			ConsecutiveFailures: cfg.Feedback.BreakerFailures,
			Interval:            cfg.Feedback.BreakerInterval,
			Timeout:             cfg.Feedback.BreakerTimeout,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown feedback backend %q", cfg.Feedback.Backend)
	}
}
