// Package feedback stores clinician verdicts on triage suggestions.
//
// Entries are keyed by the report fingerprint, a digest of the triage
// inputs, and hold no identity or session data. Saving twice for the same
// fingerprint updates the existing entry.
package feedback

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/symptom-triage-server/internal/domain"
)

// ErrInvalidFeedback is returned when a feedback entry is missing required data.
var ErrInvalidFeedback = errors.New("invalid feedback")

// Feedback is a clinician's verdict on one triage suggestion.
type Feedback struct {
	ID                  int64           `json:"id,omitempty"`
	Fingerprint         string          `json:"fingerprint"`
	PrimarySymptom      string          `json:"primary_symptom"`
	Duration            domain.Duration `json:"duration"`
	Severity            domain.Severity `json:"severity"`
	SuggestedDepartment string          `json:"suggested_department"`
	SuggestedUrgency    domain.Urgency  `json:"suggested_urgency"`
	ClinicianDepartment string          `json:"clinician_department"`
	ClinicianUrgency    domain.Urgency  `json:"clinician_urgency"`
	Agreed              bool            `json:"agreed"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// New builds a feedback entry for a report and the diagnosis shown for it.
// Empty clinician values mean the clinician accepted the suggestion.
func New(report *domain.SymptomReport, diagnosis *domain.DiagnosisResult, department string, urgency domain.Urgency, notes string) *Feedback {
	if strings.TrimSpace(department) == "" {
		department = diagnosis.Department
	}
	if urgency == "" {
		urgency = diagnosis.Urgency
	}
	return &Feedback{
		Fingerprint:         report.Fingerprint(),
		PrimarySymptom:      report.PrimarySymptom,
		Duration:            report.Duration,
		Severity:            report.Severity,
		SuggestedDepartment: diagnosis.Department,
		SuggestedUrgency:    diagnosis.Urgency,
		ClinicianDepartment: department,
		ClinicianUrgency:    urgency,
		Agreed:              strings.EqualFold(department, diagnosis.Department) && urgency == diagnosis.Urgency,
		Notes:               notes,
	}
}

// Validate checks that the entry can be stored.
func (f *Feedback) Validate() error {
	switch {
	case f == nil:
		return ErrInvalidFeedback
	case f.Fingerprint == "":
		return domain.NewValidationError("fingerprint", "fingerprint is required", f.Fingerprint)
	case !f.Duration.IsValid():
		return domain.NewValidationError("duration", domain.ErrInvalidDuration.Error(), f.Duration)
	case !f.Severity.IsValid():
		return domain.NewValidationError("severity", domain.ErrInvalidSeverity.Error(), f.Severity)
	case !f.SuggestedUrgency.IsValid():
		return domain.NewValidationError("suggested_urgency", domain.ErrInvalidUrgency.Error(), f.SuggestedUrgency)
	case !f.ClinicianUrgency.IsValid():
		return domain.NewValidationError("clinician_urgency", domain.ErrInvalidUrgency.Error(), f.ClinicianUrgency)
	case f.ClinicianDepartment == "":
		return domain.NewValidationError("clinician_department", "department is required", f.ClinicianDepartment)
	}
	return nil
}

// Stats summarizes stored feedback.
type Stats struct {
	Total     int64   `json:"total"`
	Agreed    int64   `json:"agreed"`
	Disagreed int64   `json:"disagreed"`
	Agreement float64 `json:"agreement"` // 0-1, zero when empty
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores feedback, updating the entry with the same fingerprint.
	Save(ctx context.Context, feedback *Feedback) error

	// Get returns the entry for fingerprint, or nil when there is none.
	Get(ctx context.Context, fingerprint string) (*Feedback, error)

	// List returns entries newest first.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	Count(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (*Stats, error)

	Delete(ctx context.Context, id int64) error

	// ExportJSON writes every entry as a FeedbackExport document.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON reads a FeedbackExport document. Entries whose fingerprint
	// already exists are skipped.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	domain.HealthChecker

	Close() error
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}

func newStats(total, agreed int64) *Stats {
	s := &Stats{Total: total, Agreed: agreed, Disagreed: total - agreed}
	if total > 0 {
		s.Agreement = float64(agreed) / float64(total)
	}
	return s
}
