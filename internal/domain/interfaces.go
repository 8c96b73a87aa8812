package domain

import (
	"context"
)

// Classifier maps a complete symptom report to a diagnosis result
type Classifier interface {
	Classify(report *SymptomReport) *DiagnosisResult
}

// Advisor answers a free-text health question with canned guidance
type Advisor interface {
	Advise(text string) string
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}

// HealthChecker reports whether a dependency is usable. Feedback stores and
// the triage service implement it for the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
