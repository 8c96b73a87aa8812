package config

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/domain"
)

// ReloadOnSignal reloads the configuration each time a signal arrives and
// re-applies its logging settings to logger. Other settings take effect on
// the next restart. It returns when ctx is done.
func ReloadOnSignal(ctx context.Context, m domain.ConfigManager, logger *logrus.Logger, signals <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			if err := m.Reload(); err != nil {
				logger.WithError(err).WithField("signal", sig.String()).Error("Configuration reload failed, keeping current settings")
				continue
			}
			cfg := m.GetConfig()
			ApplyLogging(logger, cfg.Logging.Level, cfg.Logging.Format)
			logger.WithFields(logrus.Fields{
				"signal": sig.String(),
				"level":  cfg.Logging.Level,
				"format": cfg.Logging.Format,
			}).Info("Configuration reloaded")
		}
	}
}
