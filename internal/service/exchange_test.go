package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-server/internal/domain"
)

func TestTriageService_ExportImportFeedback(t *testing.T) {
	ctx := context.Background()
	source, _ := newTestService(t, true)
	target, _ := newTestService(t, true)

	report := &domain.SymptomReport{
		PrimarySymptom: "Headache",
		Duration:       domain.DurationOneToThreeDays,
		Severity:       domain.SeverityModerate,
	}
	_, err := source.SubmitFeedback(ctx, FeedbackRequest{Report: report, Department: "Neurology", Urgency: domain.UrgencyMedium})
	require.NoError(t, err)

	exported, err := source.ExportFeedback(ctx, filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), exported.Count)
	assert.FileExists(t, exported.FilePath)

	first, err := target.ImportFeedback(ctx, exported.FilePath)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Imported: 1}, first)

	again, err := target.ImportFeedback(ctx, exported.FilePath)
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Skipped: 1}, again)

	_, err = target.ImportFeedback(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTriageService_ExportFeedbackDisabled(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.ExportFeedback(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrFeedbackDisabled)

	_, err = svc.ImportFeedback(context.Background(), "feedback.json")
	assert.ErrorIs(t, err, ErrFeedbackDisabled)
}
