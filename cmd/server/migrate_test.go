package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-server/internal/config"
)

func TestRunMigrate_DownRefusedInProduction(t *testing.T) {
	t.Setenv("TRIAGE_ENVIRONMENT", "production")
	m, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	require.True(t, m.IsProduction())

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	err = runMigrate(m, logger, []string{"down"})

	assert.ErrorIs(t, err, errDownInProduction)
}
