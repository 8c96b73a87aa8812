package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/symptom-triage-server/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. TRIAGE_SERVER_PORT.
const EnvPrefix = "TRIAGE"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	configPaths []string

	mu     sync.RWMutex
	config *domain.Config
}

// NewManager creates a new configuration manager. configPaths replace the
// default search paths for config.yaml when given.
func NewManager(configPaths ...string) (*Manager, error) {
	if len(configPaths) == 0 {
		configPaths = []string{".", "./config", "/etc/symptom-triage-server/"}
	}
	m := &Manager{configPaths: configPaths}
	config, err := m.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.config = config
	return m, nil
}

// loadConfig loads configuration from defaults, config.yaml and the environment
func (m *Manager) loadConfig() (*domain.Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range m.configPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return config, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Session and chat defaults
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("chat.reply_delay", "1500ms")

	// Feedback defaults
	v.SetDefault("feedback.backend", "sqlite")
	v.SetDefault("feedback.sqlite_path", "./data/feedback.db")
	v.SetDefault("feedback.breaker_failures", 5)
	v.SetDefault("feedback.breaker_timeout", "30s")
	v.SetDefault("feedback.breaker_interval", "60s")
	v.SetDefault("feedback.migrate_on_startup", true)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "symptom_triage")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// MCP defaults
	v.SetDefault("mcp.server_name", "symptom-triage-server")
	v.SetDefault("mcp.server_version", "v0.1.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.GetConfig().Database
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.GetConfig().Server
}

// Reload re-reads config.yaml and the environment. An invalid result is
// rejected and the current configuration stays in place.
func (m *Manager) Reload() error {
	config, err := m.loadConfig()
	if err != nil {
		return err
	}
	if err := validate(config); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	return nil
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	return validate(m.GetConfig())
}

func validate(config *domain.Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Session.MaxSessions <= 0 {
		return fmt.Errorf("session.max_sessions must be positive, got %d", config.Session.MaxSessions)
	}
	if config.Chat.ReplyDelay < 0 {
		return fmt.Errorf("chat.reply_delay must not be negative, got %s", config.Chat.ReplyDelay)
	}

	switch strings.ToLower(config.Feedback.Backend) {
	case "none":
	case "sqlite":
		if config.Feedback.SQLitePath == "" {
			return fmt.Errorf("feedback.sqlite_path is required for the sqlite backend")
		}
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	default:
		return fmt.Errorf("invalid feedback backend: %s", config.Feedback.Backend)
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive requests_per_second and burst")
	}

	if err := validateLogging(config.Logging.Level, config.Logging.Format); err != nil {
		return err
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.GetConfig().Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.GetConfig().Environment)
	return env == "development" || env == "dev" || env == ""
}

var _ domain.ConfigManager = (*Manager)(nil)
