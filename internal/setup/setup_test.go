package setup

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfigure_PreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Claude", "claude_desktop_config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	existing := `{"theme":"dark","mcpServers":{"other":{"command":"/usr/bin/other"}}}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	written, err := Configure(Options{ConfigPath: path, BinaryPath: "/opt/triage/mcp-server", DataDir: "/var/triage"})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `"dark"`, string(doc["theme"]))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/other", cfg.MCPServers["other"].Command)
	assert.Equal(t, ServerEntry{
		Command: "/opt/triage/mcp-server",
		Env:     map[string]string{"TRIAGE_DATA_DIR": "/var/triage"},
	}, cfg.MCPServers[ServerKey])
}

func TestGetStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	status, err := GetStatus(path)
	require.NoError(t, err)
	assert.False(t, status.Configured)
	assert.NotEmpty(t, status.Issues)

	binary := filepath.Join(dir, "mcp-server")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))
	_, err = Configure(Options{ConfigPath: path, BinaryPath: binary, DataDir: dir})
	require.NoError(t, err)

	status, err = GetStatus(path)
	require.NoError(t, err)
	assert.True(t, status.Configured)
	assert.Equal(t, binary, status.BinaryPath)
	assert.Equal(t, dir, status.DataDir)
	assert.Empty(t, status.Issues)
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	var out bytes.Buffer
	cli := NewCLI(&out)

	require.NoError(t, cli.Run(nil))
	assert.Contains(t, out.String(), "claude-desktop")

	out.Reset()
	require.NoError(t, cli.Run([]string{"claude-desktop", "--config", path, "--binary", "/bin/true", "--data-dir", filepath.Join(dir, "data")}))
	assert.Contains(t, out.String(), "Registered")
	assert.DirExists(t, filepath.Join(dir, "data", "exports"))

	out.Reset()
	require.NoError(t, cli.Run([]string{"status", "--config", path}))
	assert.Contains(t, out.String(), "Registered:  true")

	assert.Error(t, cli.Run([]string{"bogus"}))
}
