// Package intake implements the multi-step symptom intake wizard.
//
// A Builder walks through the Primary, Additional and FollowUp stages and
// produces an immutable domain.SymptomReport when it reaches Complete. Every
// stage has a backward edge and going back never discards entered data.
// A Builder is not safe for concurrent use; callers serialize access.
package intake

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/symptom-triage-server/internal/domain"
)

// Stage is a state of the intake wizard.
type Stage string

const (
	StagePrimary    Stage = "primary"
	StageAdditional Stage = "additional"
	StageFollowUp   Stage = "followup"
	StageComplete   Stage = "complete"
)

// ErrWrongStage is returned when an operation is invoked from a stage that
// does not offer it.
var ErrWrongStage = errors.New("operation not available at current intake stage")

// PrimaryInput carries the fields of the primary symptom form.
// CustomSymptom wins over Symptom when both are set.
type PrimaryInput struct {
	Symptom       string          `json:"symptom"`
	CustomSymptom string          `json:"custom_symptom"`
	Duration      domain.Duration `json:"duration"`
	Severity      domain.Severity `json:"severity"`
}

// StageInput is the single-call form of the wizard. Only the part that
// matches the current stage is read.
type StageInput struct {
	Back    bool              `json:"back"`
	Primary *PrimaryInput     `json:"primary,omitempty"`
	Toggle  []string          `json:"toggle,omitempty"`
	Answers map[string]string `json:"answers,omitempty"`
}

// Draft is a read-only view of the builder.
type Draft struct {
	Stage              Stage             `json:"stage"`
	PrimarySymptom     string            `json:"primary_symptom"`
	SelectedSymptom    string            `json:"selected_symptom,omitempty"`
	CustomSymptom      string            `json:"custom_symptom,omitempty"`
	Duration           domain.Duration   `json:"duration,omitempty"`
	Severity           domain.Severity   `json:"severity,omitempty"`
	AdditionalSymptoms []string          `json:"additional_symptoms"`
	FollowUpAnswers    map[string]string `json:"follow_up_answers"`
	Questions          []Question        `json:"questions,omitempty"`
}

// Builder accumulates a symptom report across the wizard stages.
type Builder struct {
	stage      Stage
	preset     string
	custom     string
	duration   domain.Duration
	severity   domain.Severity
	additional map[string]bool
	answers    map[string]string
	report     *domain.SymptomReport
	now        func() time.Time
}

// NewBuilder creates a builder in the Primary stage.
func NewBuilder() *Builder {
	return &Builder{
		stage:      StagePrimary,
		additional: make(map[string]bool),
		answers:    make(map[string]string),
		now:        time.Now,
	}
}

// Stage returns the current stage.
func (b *Builder) Stage() Stage {
	return b.stage
}

// PrimarySymptom returns the effective primary symptom: custom text when
// present, the preset selection otherwise.
func (b *Builder) PrimarySymptom() string {
	if b.custom != "" {
		return b.custom
	}
	return b.preset
}

// SelectSymptom picks a preset primary symptom and clears any custom text.
func (b *Builder) SelectSymptom(name string) error {
	if b.stage != StagePrimary {
		return b.wrongStage("select symptom")
	}
	b.preset = strings.TrimSpace(name)
	b.custom = ""
	return nil
}

// SetCustomSymptom enters free-text as primary symptom and clears the preset.
func (b *Builder) SetCustomSymptom(text string) error {
	if b.stage != StagePrimary {
		return b.wrongStage("set custom symptom")
	}
	b.custom = strings.TrimSpace(text)
	b.preset = ""
	return nil
}

// SubmitPrimary records the primary form and advances to Additional when the
// symptom, duration and severity are all present and valid. Otherwise it
// stays in Primary, keeps every value already entered and returns a
// *domain.IncompleteInputError naming the missing fields.
func (b *Builder) SubmitPrimary(in PrimaryInput) error {
	if b.stage != StagePrimary {
		return b.wrongStage("submit primary symptom")
	}

	switch {
	case strings.TrimSpace(in.CustomSymptom) != "":
		b.custom = strings.TrimSpace(in.CustomSymptom)
		b.preset = ""
	case strings.TrimSpace(in.Symptom) != "":
		b.preset = strings.TrimSpace(in.Symptom)
		b.custom = ""
	}

	var missing []string
	if b.PrimarySymptom() == "" {
		missing = append(missing, "primary_symptom")
	}
	if in.Duration != "" && in.Duration.IsValid() {
		b.duration = in.Duration
	}
	if !b.duration.IsValid() {
		missing = append(missing, "duration")
	}
	if in.Severity != "" && in.Severity.IsValid() {
		b.severity = in.Severity
	}
	if !b.severity.IsValid() {
		missing = append(missing, "severity")
	}
	if len(missing) > 0 {
		return domain.NewIncompleteInputError(string(StagePrimary), missing...)
	}

	b.dropPrimaryFromAdditional()
	b.stage = StageAdditional
	return nil
}

// AvailableAdditional lists the catalog symptoms that may be toggled: the
// catalog minus the primary symptom, compared exactly as entered.
func (b *Builder) AvailableAdditional() []string {
	primary := b.PrimarySymptom()
	out := make([]string, 0, len(commonSymptoms))
	for _, s := range commonSymptoms {
		if s != primary {
			out = append(out, s)
		}
	}
	return out
}

// ToggleAdditional adds or removes a catalog symptom and reports whether it
// is selected afterwards. The primary symptom and non-catalog text are
// refused without error.
func (b *Builder) ToggleAdditional(symptom string) (bool, error) {
	if b.stage != StageAdditional {
		return false, b.wrongStage("toggle additional symptom")
	}
	name, ok := CanonicalSymptom(symptom)
	if !ok || name == b.PrimarySymptom() {
		return false, nil
	}
	if b.additional[name] {
		delete(b.additional, name)
		return false, nil
	}
	b.additional[name] = true
	return true, nil
}

// ContinueAdditional moves to FollowUp. No selection is required.
func (b *Builder) ContinueAdditional() error {
	if b.stage != StageAdditional {
		return b.wrongStage("continue")
	}
	b.stage = StageFollowUp
	return nil
}

// FollowUpQuestions returns the questions for the current primary symptom.
func (b *Builder) FollowUpQuestions() []Question {
	return FollowUpQuestions(b.PrimarySymptom())
}

// Answer records one follow-up answer.
func (b *Builder) Answer(key, value string) error {
	if b.stage != StageFollowUp {
		return b.wrongStage("answer follow-up question")
	}
	b.answers[key] = value
	return nil
}

// Complete merges answers, finalizes the report and moves to Complete.
// Only answers keyed by the current symptom's questions are kept.
func (b *Builder) Complete(answers map[string]string) (*domain.SymptomReport, error) {
	if b.stage != StageFollowUp {
		return nil, b.wrongStage("complete intake")
	}
	for k, v := range answers {
		b.answers[k] = v
	}

	kept := make(map[string]string)
	for _, q := range b.FollowUpQuestions() {
		if v, ok := b.answers[q.Key]; ok {
			kept[q.Key] = v
		}
	}

	b.report = &domain.SymptomReport{
		PrimarySymptom:     b.PrimarySymptom(),
		Duration:           b.duration,
		Severity:           b.severity,
		AdditionalSymptoms: b.selectedAdditional(),
		FollowUpAnswers:    kept,
		SubmittedAt:        b.now().UTC(),
	}
	b.stage = StageComplete
	return b.report.Clone(), nil
}

// Report returns a copy of the finalized report, or nil before Complete.
func (b *Builder) Report() *domain.SymptomReport {
	return b.report.Clone()
}

// Back moves to the previous stage. Entered data is kept; from Primary it
// is a no-op.
func (b *Builder) Back() {
	switch b.stage {
	case StageAdditional:
		b.stage = StagePrimary
	case StageFollowUp:
		b.stage = StageAdditional
	case StageComplete:
		b.report = nil
		b.stage = StageFollowUp
	}
}

// Rewind returns to Primary with every entered value preserved, so a
// completed intake can be revised.
func (b *Builder) Rewind() {
	b.report = nil
	b.stage = StagePrimary
}

// Advance applies in to the current stage and returns the finalized report
// once the wizard reaches Complete. A nil report with a nil error means the
// wizard moved but is not done yet.
func (b *Builder) Advance(in StageInput) (*domain.SymptomReport, error) {
	if in.Back {
		b.Back()
		return nil, nil
	}

	switch b.stage {
	case StagePrimary:
		var primary PrimaryInput
		if in.Primary != nil {
			primary = *in.Primary
		}
		return nil, b.SubmitPrimary(primary)
	case StageAdditional:
		for _, s := range in.Toggle {
			if _, err := b.ToggleAdditional(s); err != nil {
				return nil, err
			}
		}
		return nil, b.ContinueAdditional()
	case StageFollowUp:
		return b.Complete(in.Answers)
	default:
		return b.Report(), nil
	}
}

// Draft returns a snapshot of everything entered so far.
func (b *Builder) Draft() Draft {
	answers := make(map[string]string, len(b.answers))
	for k, v := range b.answers {
		answers[k] = v
	}
	return Draft{
		Stage:              b.stage,
		PrimarySymptom:     b.PrimarySymptom(),
		SelectedSymptom:    b.preset,
		CustomSymptom:      b.custom,
		Duration:           b.duration,
		Severity:           b.severity,
		AdditionalSymptoms: b.selectedAdditional(),
		FollowUpAnswers:    answers,
		Questions:          b.FollowUpQuestions(),
	}
}

// selectedAdditional returns the selection in catalog order.
func (b *Builder) selectedAdditional() []string {
	out := make([]string, 0, len(b.additional))
	for _, s := range commonSymptoms {
		if b.additional[s] {
			out = append(out, s)
		}
	}
	return out
}

func (b *Builder) dropPrimaryFromAdditional() {
	primary := b.PrimarySymptom()
	for s := range b.additional {
		if s == primary {
			delete(b.additional, s)
		}
	}
}

func (b *Builder) wrongStage(op string) error {
	return fmt.Errorf("%s at %s stage: %w", op, b.stage, ErrWrongStage)
}
