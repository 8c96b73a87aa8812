package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// ExportResult names the file written by ExportFeedback.
type ExportResult struct {
	FilePath string `json:"file_path"`
	Count    int64  `json:"count"`
}

// ImportResult reports how many entries an import saved and skipped.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ExportFeedback writes every stored verdict to a timestamped JSON file in dir.
func (s *TriageService) ExportFeedback(ctx context.Context, dir string) (*ExportResult, error) {
	if s.feedback == nil {
		return nil, ErrFeedbackDisabled
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("feedback_export_%s.json", time.Now().UTC().Format("20060102_150405.000")))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	err = s.feedback.ExportJSON(ctx, file)
	if s.metrics != nil {
		s.metrics.ObserveFeedback("export", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export feedback: %w", err)
	}

	count, err := s.feedback.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"file":  path,
		"count": count,
	}).Info("Feedback exported")
	return &ExportResult{FilePath: path, Count: count}, nil
}

// ImportFeedback loads an export file. Verdicts whose fingerprint is already
// stored are skipped.
func (s *TriageService) ImportFeedback(ctx context.Context, path string) (*ImportResult, error) {
	if s.feedback == nil {
		return nil, ErrFeedbackDisabled
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	imported, skipped, err := s.feedback.ImportJSON(ctx, file)
	if s.metrics != nil {
		s.metrics.ObserveFeedback("import", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to import feedback: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"file":     path,
		"imported": imported,
		"skipped":  skipped,
	}).Info("Feedback imported")
	return &ImportResult{Imported: imported, Skipped: skipped}, nil
}
