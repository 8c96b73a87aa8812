package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 100, cfg.MaxSessions)
	assert.Zero(t, cfg.ReplyDelay)
	assert.True(t, cfg.FeedbackEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "symptom-triage-server", cfg.ServerName)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 100, cfg.MaxSessions)
	assert.True(t, cfg.FeedbackEnabled)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("TRIAGE_DATA_DIR", "/tmp/test-triage")
	t.Setenv("TRIAGE_MAX_SESSIONS", "25")
	t.Setenv("TRIAGE_REPLY_DELAY", "250ms")
	t.Setenv("TRIAGE_FEEDBACK_ENABLED", "false")
	t.Setenv("TRIAGE_LOG_LEVEL", "debug")
	t.Setenv("TRIAGE_LOG_FORMAT", "text")
	t.Setenv("TRIAGE_MCP_SERVER_NAME", "triage-test")

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-triage", cfg.DataDir)
	assert.Equal(t, 25, cfg.MaxSessions)
	assert.Equal(t, 250*time.Millisecond, cfg.ReplyDelay)
	assert.False(t, cfg.FeedbackEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "triage-test", cfg.ServerName)
}

func TestLoadLiteConfig_IgnoresInvalidValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("TRIAGE_MAX_SESSIONS", "-3")
	t.Setenv("TRIAGE_REPLY_DELAY", "soon")
	t.Setenv("TRIAGE_FEEDBACK_ENABLED", "maybe")

	cfg := LoadLiteConfig()

	assert.Equal(t, 100, cfg.MaxSessions)
	assert.Zero(t, cfg.ReplyDelay)
	assert.True(t, cfg.FeedbackEnabled)
}

func TestLiteConfig_FeedbackDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.symptom-triage"}

	path := cfg.FeedbackDBPath()

	assert.Equal(t, "/home/user/.symptom-triage/feedback.db", path)
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.symptom-triage"}

	path := cfg.ExportDir()

	assert.Equal(t, "/home/user/.symptom-triage/exports", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: filepath.Join(t.TempDir(), "triage")}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"TRIAGE_DATA_DIR",
		"TRIAGE_MAX_SESSIONS",
		"TRIAGE_REPLY_DELAY",
		"TRIAGE_FEEDBACK_ENABLED",
		"TRIAGE_LOG_LEVEL",
		"TRIAGE_LOG_FORMAT",
		"TRIAGE_MCP_SERVER_NAME",
	}
	for _, v := range vars {
		// Setenv registers the restore, Unsetenv clears it for this test.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}
