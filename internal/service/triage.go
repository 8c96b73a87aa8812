package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/advisory"
	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/feedback"
	"github.com/symptom-triage-server/internal/intake"
	"github.com/symptom-triage-server/internal/monitoring"
	"github.com/symptom-triage-server/internal/session"
	"github.com/symptom-triage-server/internal/triage"
)

var (
	// ErrFeedbackDisabled is returned when no feedback store is configured.
	ErrFeedbackDisabled = errors.New("feedback store is not configured")

	// ErrNoAssessment is returned when a diagnosis is requested before the
	// intake of a session is complete.
	ErrNoAssessment = errors.New("session has no assessment yet")
)

const (
	defaultFeedbackLimit = 50
	maxFeedbackLimit     = 500
)

// TriageService is the facade used by the HTTP and MCP surfaces.
type TriageService struct {
	logger     *logrus.Logger
	sessions   *session.Manager
	classifier domain.Classifier
	feedback   feedback.Store
	metrics    *monitoring.Metrics
}

// NewTriageService creates a new triage service. store and metrics may be nil.
func NewTriageService(
	logger *logrus.Logger,
	sessions *session.Manager,
	store feedback.Store,
	metrics *monitoring.Metrics,
) *TriageService {
	return &TriageService{
		logger:     logger,
		sessions:   sessions,
		classifier: triage.NewClassifier(),
		feedback:   store,
		metrics:    metrics,
	}
}

// StartSessionResult is returned when a session is created.
type StartSessionResult struct {
	Session  session.Snapshot `json:"session"`
	Greeting string           `json:"greeting"`
}

// StartSession creates a session. A nil identity starts at the identity view.
func (s *TriageService) StartSession(identity *domain.IdentityRecord) *StartSessionResult {
	c := s.sessions.Create(identity)
	greeting := advisory.Greeting(identity)

	if s.metrics != nil {
		s.metrics.SessionsTotal.Inc()
		s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}
	s.logger.WithFields(logrus.Fields{
		"session_id":      c.ID(),
		"identified":      identity != nil,
		"active_sessions": s.sessions.Len(),
	}).Info("Session started")

	return &StartSessionResult{Session: c.Snapshot(), Greeting: greeting}
}

// GetSession returns the state of a session.
func (s *TriageService) GetSession(id string) (session.Snapshot, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// EndSession discards a session and everything it holds.
func (s *TriageService) EndSession(id string) error {
	if err := s.sessions.Delete(id); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	}
	s.logger.WithField("session_id", id).Info("Session ended")
	return nil
}

// SetIdentity stores the identity record of a session.
func (s *TriageService) SetIdentity(id string, record domain.IdentityRecord) (session.Snapshot, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	c.SetIdentity(record)
	s.logger.WithField("session_id", id).Debug("Identity captured")
	return c.Snapshot(), nil
}

// Navigate switches the view of a session.
func (s *TriageService) Navigate(id string, to session.Stage) (session.Snapshot, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := c.Navigate(to); err != nil {
		return session.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Intake returns the intake draft of a session.
func (s *TriageService) Intake(id string) (intake.Draft, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return intake.Draft{}, err
	}
	return c.Snapshot().Intake, nil
}

// SubmitPrimary records the primary symptom form.
func (s *TriageService) SubmitPrimary(id string, in intake.PrimaryInput) (intake.Draft, error) {
	return s.withIntake(id, func(b *intake.Builder) error {
		return b.SubmitPrimary(in)
	})
}

// ToggleAdditional flips one additional symptom.
func (s *TriageService) ToggleAdditional(id, symptom string) (intake.Draft, error) {
	return s.withIntake(id, func(b *intake.Builder) error {
		_, err := b.ToggleAdditional(symptom)
		return err
	})
}

// ContinueAdditional leaves the additional symptom stage.
func (s *TriageService) ContinueAdditional(id string) (intake.Draft, error) {
	return s.withIntake(id, func(b *intake.Builder) error {
		return b.ContinueAdditional()
	})
}

// IntakeBack moves the intake wizard one stage back.
func (s *TriageService) IntakeBack(id string) (intake.Draft, error) {
	return s.withIntake(id, func(b *intake.Builder) error {
		b.Back()
		return nil
	})
}

// CompleteIntake finalizes the follow-up stage and classifies the report.
func (s *TriageService) CompleteIntake(id string, answers map[string]string) (*domain.Assessment, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	assessment, err := c.CompleteIntake(answers)
	if err != nil {
		s.observeIntakeError(id, err)
		return nil, err
	}
	s.observeAssessment(id, assessment)
	return assessment, nil
}

// AdvanceResult is the outcome of one wizard step.
type AdvanceResult struct {
	Draft      intake.Draft       `json:"intake"`
	Assessment *domain.Assessment `json:"assessment,omitempty"`
}

// Advance feeds one step into the intake wizard of a session.
func (s *TriageService) Advance(id string, in intake.StageInput) (*AdvanceResult, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	before := c.Snapshot().Intake.Stage
	assessment, err := c.Advance(in)
	if err != nil {
		s.observeIntakeError(id, err)
		return nil, err
	}
	if assessment != nil && before != intake.StageComplete {
		s.observeAssessment(id, assessment)
	}
	return &AdvanceResult{Draft: c.Snapshot().Intake, Assessment: assessment}, nil
}

// ReviseSymptoms reopens the intake of an assessed session.
func (s *TriageService) ReviseSymptoms(id string) (session.Snapshot, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := c.ReviseSymptoms(); err != nil {
		return session.Snapshot{}, err
	}
	s.logger.WithField("session_id", id).Info("Symptoms reopened for revision")
	return c.Snapshot(), nil
}

// Diagnosis returns the current assessment of a session.
func (s *TriageService) Diagnosis(id string) (*domain.Assessment, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	assessment := c.Assessment()
	if assessment == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrNoAssessment)
	}
	return assessment, nil
}

// Transcript returns the chat transcript of a session.
func (s *TriageService) Transcript(id string) ([]domain.ChatMessage, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return c.Chat().Transcript(), nil
}

// SendChat runs one chat round. A cancelled ctx keeps the user message and
// drops the reply.
func (s *TriageService) SendChat(ctx context.Context, id, text string) (domain.ChatMessage, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	start := time.Now()
	reply, err := c.Chat().Send(ctx, text)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ChatMessages.WithLabelValues(chatStatus(err)).Inc()
		}
		s.logger.WithError(err).WithField("session_id", id).Debug("Chat round ended without reply")
		return domain.ChatMessage{}, err
	}

	rule, _ := advisory.Match(text)
	if s.metrics != nil {
		s.metrics.ChatMessages.WithLabelValues("replied").Inc()
		s.metrics.ChatLatency.Observe(time.Since(start).Seconds())
		s.metrics.AdviceMatches.WithLabelValues(rule).Inc()
	}
	s.logger.WithFields(logrus.Fields{
		"session_id": id,
		"rule":       rule,
	}).Debug("Chat reply sent")
	return reply, nil
}

// Classify triages a complete report without a session.
func (s *TriageService) Classify(report *domain.SymptomReport) (*domain.DiagnosisResult, error) {
	if missing := report.MissingFields(); len(missing) > 0 {
		err := domain.NewIncompleteInputError("classify", missing...)
		s.observeIntakeError("", err)
		return nil, err
	}

	result := s.classifier.Classify(report)
	s.observeDiagnosis(report, result)
	return result, nil
}

// AdviceResult is the answer to a free-text health question.
type AdviceResult struct {
	Rule     string `json:"rule"`
	Response string `json:"response"`
}

// Advise answers a free-text question.
func (s *TriageService) Advise(text string) *AdviceResult {
	rule, response := advisory.Match(text)
	if s.metrics != nil {
		s.metrics.AdviceMatches.WithLabelValues(rule).Inc()
	}
	s.logger.WithField("rule", rule).Debug("Advice matched")
	return &AdviceResult{Rule: rule, Response: response}
}

// FollowUpQuestions returns the follow-up questions for a symptom.
func (s *TriageService) FollowUpQuestions(symptom string) []intake.Question {
	return intake.FollowUpQuestions(strings.TrimSpace(symptom))
}

// Option is one selectable value of an intake form field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog describes every choice offered by the intake form and the chat.
type Catalog struct {
	Symptoms       []string             `json:"symptoms"`
	Durations      []Option             `json:"durations"`
	Severities     []Option             `json:"severities"`
	FollowUps      []intake.FollowUpSet `json:"follow_ups"`
	QuickQuestions []string             `json:"quick_questions"`
}

// Catalog returns the static choices of the intake form.
func (s *TriageService) Catalog() *Catalog {
	cat := &Catalog{
		Symptoms:       intake.Symptoms(),
		FollowUps:      intake.FollowUpTable(),
		QuickQuestions: advisory.QuickQuestions(),
	}
	for _, d := range domain.Durations {
		cat.Durations = append(cat.Durations, Option{Value: d.String(), Label: d.Label()})
	}
	for _, sv := range domain.Severities {
		cat.Severities = append(cat.Severities, Option{Value: sv.String(), Label: sv.Label()})
	}
	return cat
}

// FeedbackRequest records a clinician's verdict. When SessionID is set the
// session's assessment is used, otherwise Report is classified.
type FeedbackRequest struct {
	SessionID  string                `json:"session_id,omitempty"`
	Report     *domain.SymptomReport `json:"report,omitempty"`
	Department string                `json:"department,omitempty"`
	Urgency    domain.Urgency        `json:"urgency,omitempty"`
	Notes      string                `json:"notes,omitempty"`
}

// SubmitFeedback stores a clinician verdict on a triage suggestion.
func (s *TriageService) SubmitFeedback(ctx context.Context, req FeedbackRequest) (*feedback.Feedback, error) {
	if s.feedback == nil {
		return nil, ErrFeedbackDisabled
	}
	if req.Urgency != "" && !req.Urgency.IsValid() {
		return nil, domain.NewValidationError("urgency", domain.ErrInvalidUrgency.Error(), req.Urgency)
	}

	var report *domain.SymptomReport
	var diagnosis *domain.DiagnosisResult
	if req.SessionID != "" {
		assessment, err := s.Diagnosis(req.SessionID)
		if err != nil {
			return nil, err
		}
		report, diagnosis = assessment.Report, assessment.Diagnosis
	} else {
		result, err := s.Classify(req.Report)
		if err != nil {
			return nil, err
		}
		report, diagnosis = req.Report, result
	}

	entry := feedback.New(report, diagnosis, req.Department, req.Urgency, req.Notes)
	err := s.feedback.Save(ctx, entry)
	if s.metrics != nil {
		s.metrics.ObserveFeedback("save", err)
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to save triage feedback")
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"feedback_id": entry.ID,
		"symptom":     entry.PrimarySymptom,
		"agreed":      entry.Agreed,
	}).Info("Triage feedback recorded")
	return entry, nil
}

// FeedbackPage is one page of stored feedback with overall statistics.
type FeedbackPage struct {
	Entries []*feedback.Feedback `json:"entries"`
	Stats   *feedback.Stats      `json:"stats"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// ListFeedback returns stored feedback newest first.
func (s *TriageService) ListFeedback(ctx context.Context, limit, offset int) (*FeedbackPage, error) {
	if s.feedback == nil {
		return nil, ErrFeedbackDisabled
	}
	if limit <= 0 {
		limit = defaultFeedbackLimit
	}
	if limit > maxFeedbackLimit {
		limit = maxFeedbackLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.feedback.List(ctx, limit, offset)
	if s.metrics != nil {
		s.metrics.ObserveFeedback("list", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	stats, err := s.feedback.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute feedback stats: %w", err)
	}
	if entries == nil {
		entries = []*feedback.Feedback{}
	}
	return &FeedbackPage{Entries: entries, Stats: stats, Limit: limit, Offset: offset}, nil
}

// Ping reports whether the feedback store is reachable. Without a store
// there is nothing to check.
func (s *TriageService) Ping(ctx context.Context) error {
	if s.feedback == nil {
		return nil
	}
	return s.feedback.Ping(ctx)
}

var _ domain.HealthChecker = (*TriageService)(nil)

// FeedbackEnabled reports whether a feedback store is configured.
func (s *TriageService) FeedbackEnabled() bool {
	return s.feedback != nil
}

// ActiveSessions returns the number of live sessions.
func (s *TriageService) ActiveSessions() int {
	return s.sessions.Len()
}

func (s *TriageService) withIntake(id string, fn func(b *intake.Builder) error) (intake.Draft, error) {
	c, err := s.sessions.Get(id)
	if err != nil {
		return intake.Draft{}, err
	}
	if err := c.WithIntake(fn); err != nil {
		s.observeIntakeError(id, err)
		return intake.Draft{}, err
	}
	return c.Snapshot().Intake, nil
}

func (s *TriageService) observeIntakeError(id string, err error) {
	var incomplete *domain.IncompleteInputError
	if !errors.As(err, &incomplete) {
		return
	}
	if s.metrics != nil {
		s.metrics.IncompleteInput.WithLabelValues(incomplete.Stage).Inc()
	}
	s.logger.WithFields(logrus.Fields{
		"session_id": id,
		"stage":      incomplete.Stage,
		"missing":    incomplete.Fields,
	}).Debug("Incomplete intake submission")
}

func (s *TriageService) observeAssessment(id string, assessment *domain.Assessment) {
	s.observeDiagnosis(assessment.Report, assessment.Diagnosis)
	s.logger.WithField("session_id", id).Info("Session assessed")
}

func (s *TriageService) observeDiagnosis(report *domain.SymptomReport, result *domain.DiagnosisResult) {
	recognized := triage.Recognized(report.PrimarySymptom)
	if s.metrics != nil {
		s.metrics.Classifications.WithLabelValues(result.Department, string(result.Urgency)).Inc()
		if len(result.RedFlags) > 0 {
			s.metrics.RedFlags.Inc()
		}
		if !recognized {
			s.metrics.Unrecognized.Inc()
		}
	}
	s.logger.WithFields(logrus.Fields(report.LogFields())).
		WithFields(logrus.Fields(result.LogFields())).
		WithField("recognized", recognized).
		Info("Symptoms classified")
}

func chatStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrIncompleteInput):
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
