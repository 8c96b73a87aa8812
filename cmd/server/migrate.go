package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/feedback"
)

// errDownInProduction guards the feedback table against accidental drops.
var errDownInProduction = errors.New("refusing to migrate down in production (pass --force to override)")

// runMigrate handles "server migrate [up|down|version]" against the
// PostgreSQL feedback database.
func runMigrate(configManager domain.ConfigManager, logger *logrus.Logger, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	if command == "down" && configManager.IsProduction() && !slices.Contains(args[1:], "--force") {
		return errDownInProduction
	}
	cfg := configManager.GetConfig()

	runner, err := feedback.NewMigrationRunner(feedback.URL(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx := context.Background()
	switch command {
	case "up":
		return runner.Up(ctx)
	case "down":
		return runner.Down(ctx)
	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Feedback schema version")
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down or version)", command)
	}
}

func migrateUp(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) error {
	runner, err := feedback.NewMigrationRunner(feedback.URL(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up(ctx)
}
