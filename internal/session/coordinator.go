// Package session ties the intake wizard, the classifier and the advisory
// chat into one guarded patient session.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/symptom-triage-server/internal/advisory"
	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/intake"
	"github.com/symptom-triage-server/internal/triage"
)

// Progress is how far the patient has got. Only ProgressAssessed carries an
// assessment, so a diagnosis never exists without its report.
type Progress int

const (
	ProgressNew Progress = iota
	ProgressIdentified
	ProgressAssessed
)

func (p Progress) String() string {
	switch p {
	case ProgressIdentified:
		return "identified"
	case ProgressAssessed:
		return "assessed"
	default:
		return "new"
	}
}

// Stage is the view currently shown to the patient.
type Stage string

const (
	StageIdentity  Stage = "identity"
	StageSymptoms  Stage = "symptoms"
	StageDiagnosis Stage = "diagnosis"
	StageChat      Stage = "chat"
)

// IsValid reports whether s names a known stage.
func (s Stage) IsValid() bool {
	switch s {
	case StageIdentity, StageSymptoms, StageDiagnosis, StageChat:
		return true
	default:
		return false
	}
}

var (
	ErrStageLocked  = errors.New("stage is not reachable yet")
	ErrUnknownStage = errors.New("unknown stage")
)

// Options configures new coordinators.
type Options struct {
	Classifier domain.Classifier
	Advisor    domain.Advisor
	ReplyDelay time.Duration
}

// Snapshot is a read-only copy of a coordinator's state.
type Snapshot struct {
	ID         string                 `json:"id"`
	Stage      Stage                  `json:"stage"`
	Progress   string                 `json:"progress"`
	Identity   *domain.IdentityRecord `json:"identity,omitempty"`
	Intake     intake.Draft           `json:"intake"`
	Assessment *domain.Assessment     `json:"assessment,omitempty"`
	ChatLength int                    `json:"chat_length"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Coordinator owns one patient's identity, intake, assessment and chat.
// It is safe for concurrent use.
type Coordinator struct {
	id        string
	createdAt time.Time
	opts      Options

	mu         sync.Mutex
	stage      Stage
	progress   Progress
	identity   *domain.IdentityRecord
	builder    *intake.Builder
	assessment *domain.Assessment
	chat       *advisory.ChatSession
}

// NewCoordinator creates a session at the identity stage.
func NewCoordinator(id string, opts Options) *Coordinator {
	if opts.Classifier == nil {
		opts.Classifier = triage.NewClassifier()
	}
	if opts.Advisor == nil {
		opts.Advisor = advisory.NewMatcher()
	}
	return &Coordinator{
		id:        id,
		createdAt: time.Now().UTC(),
		opts:      opts,
		stage:     StageIdentity,
		progress:  ProgressNew,
		builder:   intake.NewBuilder(),
	}
}

// ID returns the session identifier.
func (c *Coordinator) ID() string {
	return c.id
}

// Stage returns the current view.
func (c *Coordinator) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Progress returns how far the session has got.
func (c *Coordinator) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// SetIdentity stores the record from identity capture and moves to the
// symptoms view. A later call replaces the record but keeps any assessment.
func (c *Coordinator) SetIdentity(record domain.IdentityRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = &record
	if c.progress == ProgressNew {
		c.progress = ProgressIdentified
	}
	c.stage = StageSymptoms
}

// Navigate switches view. Identity and chat are always reachable, symptoms
// needs an identity and diagnosis needs an assessment.
func (c *Coordinator) Navigate(to Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownStage, to)
	}
	if !c.canNavigate(to) {
		return fmt.Errorf("navigate to %s while %s: %w", to, c.progress, ErrStageLocked)
	}
	c.stage = to
	return nil
}

func (c *Coordinator) canNavigate(to Stage) bool {
	switch to {
	case StageSymptoms:
		return c.progress >= ProgressIdentified
	case StageDiagnosis:
		return c.progress == ProgressAssessed
	default:
		return true
	}
}

// WithIntake runs fn against the intake builder under the session lock.
// The builder must not be retained after fn returns.
func (c *Coordinator) WithIntake(fn func(b *intake.Builder) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSymptoms(); err != nil {
		return err
	}
	err := fn(c.builder)
	c.syncAssessment()
	return err
}

// Advance feeds in to the intake wizard. When the wizard completes the
// report is classified and the session moves to the diagnosis view.
func (c *Coordinator) Advance(in intake.StageInput) (*domain.Assessment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSymptoms(); err != nil {
		return nil, err
	}
	if c.builder.Stage() == intake.StageComplete && !in.Back {
		return c.assessmentCopy(), nil
	}
	report, err := c.builder.Advance(in)
	if err != nil {
		return nil, err
	}
	if report == nil {
		c.syncAssessment()
		return nil, nil
	}
	return c.assess(report), nil
}

// CompleteIntake finalizes the follow-up stage with answers, classifies the
// report and moves to the diagnosis view.
func (c *Coordinator) CompleteIntake(answers map[string]string) (*domain.Assessment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSymptoms(); err != nil {
		return nil, err
	}
	report, err := c.builder.Complete(answers)
	if err != nil {
		return nil, err
	}
	return c.assess(report), nil
}

// ReviseSymptoms discards the assessment and reopens the wizard at its
// first stage with every earlier input preserved.
func (c *Coordinator) ReviseSymptoms() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireSymptoms(); err != nil {
		return err
	}
	c.assessment = nil
	if c.progress == ProgressAssessed {
		c.progress = ProgressIdentified
	}
	c.builder.Rewind()
	c.stage = StageSymptoms
	return nil
}

// Assessment returns a copy of the current assessment, or nil.
func (c *Coordinator) Assessment() *domain.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assessmentCopy()
}

// Chat returns the session's chat, creating it on first use. The greeting
// uses the identity known at that moment.
func (c *Coordinator) Chat() *advisory.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chat == nil {
		c.chat = advisory.NewChatSession(c.opts.Advisor, c.identity, c.opts.ReplyDelay)
	}
	return c.chat
}

// Snapshot returns a copy of the session state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ID:         c.id,
		Stage:      c.stage,
		Progress:   c.progress.String(),
		Intake:     c.builder.Draft(),
		Assessment: c.assessmentCopy(),
		CreatedAt:  c.createdAt,
	}
	if c.identity != nil {
		identity := *c.identity
		snap.Identity = &identity
	}
	if c.chat != nil {
		snap.ChatLength = c.chat.Len()
	}
	return snap
}

func (c *Coordinator) requireSymptoms() error {
	if c.progress < ProgressIdentified {
		return fmt.Errorf("intake before identity: %w", ErrStageLocked)
	}
	return nil
}

// syncAssessment keeps the assessment in step with the builder: a builder
// that left Complete invalidates it, one that reached Complete gets one.
func (c *Coordinator) syncAssessment() {
	complete := c.builder.Stage() == intake.StageComplete
	switch {
	case !complete && c.assessment != nil:
		c.assessment = nil
		c.progress = ProgressIdentified
		if c.stage == StageDiagnosis {
			c.stage = StageSymptoms
		}
	case complete && c.assessment == nil:
		c.assess(c.builder.Report())
	}
}

func (c *Coordinator) assess(report *domain.SymptomReport) *domain.Assessment {
	c.assessment = &domain.Assessment{
		Report:    report,
		Diagnosis: c.opts.Classifier.Classify(report),
	}
	c.progress = ProgressAssessed
	c.stage = StageDiagnosis
	return c.assessmentCopy()
}

func (c *Coordinator) assessmentCopy() *domain.Assessment {
	if c.assessment == nil {
		return nil
	}
	diagnosis := *c.assessment.Diagnosis
	diagnosis.Conditions = append([]domain.CandidateCondition(nil), c.assessment.Diagnosis.Conditions...)
	diagnosis.RedFlags = append([]string(nil), c.assessment.Diagnosis.RedFlags...)
	return &domain.Assessment{
		Report:    c.assessment.Report.Clone(),
		Diagnosis: &diagnosis,
	}
}
