package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-server/internal/advisory"
	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/intake"
)

func identified(t *testing.T) *Coordinator {
	t.Helper()
	c := NewCoordinator("test-session", Options{})
	c.SetIdentity(domain.IdentityRecord{Name: "Meera Iyer", IDNumber: "XXXX-1234"})
	return c
}

func completeIntake(t *testing.T, c *Coordinator, symptom string, severity domain.Severity) *domain.Assessment {
	t.Helper()
	_, err := c.Advance(intake.StageInput{Primary: &intake.PrimaryInput{
		Symptom:  symptom,
		Duration: domain.DurationFourToSevenDays,
		Severity: severity,
	}})
	require.NoError(t, err)
	_, err = c.Advance(intake.StageInput{})
	require.NoError(t, err)
	assessment, err := c.Advance(intake.StageInput{})
	require.NoError(t, err)
	require.NotNil(t, assessment)
	return assessment
}

func TestNavigateGating(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) *Coordinator
		allowed  map[Stage]bool
		progress Progress
	}{
		{
			name:     "new",
			setup:    func(t *testing.T) *Coordinator { return NewCoordinator("s", Options{}) },
			allowed:  map[Stage]bool{StageIdentity: true, StageSymptoms: false, StageDiagnosis: false, StageChat: true},
			progress: ProgressNew,
		},
		{
			name:     "identified",
			setup:    identified,
			allowed:  map[Stage]bool{StageIdentity: true, StageSymptoms: true, StageDiagnosis: false, StageChat: true},
			progress: ProgressIdentified,
		},
		{
			name: "assessed",
			setup: func(t *testing.T) *Coordinator {
				c := identified(t)
				completeIntake(t, c, "Cough", domain.SeverityModerate)
				return c
			},
			allowed:  map[Stage]bool{StageIdentity: true, StageSymptoms: true, StageDiagnosis: true, StageChat: true},
			progress: ProgressAssessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for stage, allowed := range tt.allowed {
				c := tt.setup(t)
				assert.Equal(t, tt.progress, c.Progress())
				before := c.Stage()

				err := c.Navigate(stage)
				if allowed {
					assert.NoError(t, err, stage)
					assert.Equal(t, stage, c.Stage())
				} else {
					assert.ErrorIs(t, err, ErrStageLocked, stage)
					assert.Equal(t, before, c.Stage())
				}
			}
		})
	}
}

func TestNavigateUnknownStage(t *testing.T) {
	c := NewCoordinator("s", Options{})
	assert.ErrorIs(t, c.Navigate("billing"), ErrUnknownStage)
}

func TestSetIdentityMovesToSymptoms(t *testing.T) {
	c := NewCoordinator("s", Options{})
	assert.Equal(t, StageIdentity, c.Stage())

	c.SetIdentity(domain.IdentityRecord{Name: "Arjun"})

	assert.Equal(t, StageSymptoms, c.Stage())
	assert.Equal(t, "Arjun", c.Snapshot().Identity.Name)
}

func TestIntakeRequiresIdentity(t *testing.T) {
	c := NewCoordinator("s", Options{})

	_, err := c.Advance(intake.StageInput{})
	assert.ErrorIs(t, err, ErrStageLocked)
	assert.ErrorIs(t, c.ReviseSymptoms(), ErrStageLocked)
}

func TestCompleteIntakeProducesAssessment(t *testing.T) {
	c := identified(t)

	assessment := completeIntake(t, c, "Cough", domain.SeverityModerate)

	assert.Equal(t, StageDiagnosis, c.Stage())
	assert.Equal(t, ProgressAssessed, c.Progress())
	assert.Equal(t, "Cough", assessment.Report.PrimarySymptom)
	assert.Equal(t, "General Medicine", assessment.Diagnosis.Department)
	assert.Equal(t, domain.UrgencyLow, assessment.Diagnosis.Urgency)
}

func TestCompleteIntakeWithAnswers(t *testing.T) {
	c := identified(t)
	require.NoError(t, c.WithIntake(func(b *intake.Builder) error {
		if err := b.SubmitPrimary(intake.PrimaryInput{
			Symptom:  "Headache",
			Duration: domain.DurationOneToThreeDays,
			Severity: domain.SeverityMild,
		}); err != nil {
			return err
		}
		return b.ContinueAdditional()
	}))

	assessment, err := c.CompleteIntake(map[string]string{"location": "temples"})

	require.NoError(t, err)
	assert.Equal(t, "temples", assessment.Report.FollowUpAnswers["location"])
	assert.Equal(t, "Neurology", assessment.Diagnosis.Department)
}

func TestReviseSymptomsInvalidatesDiagnosis(t *testing.T) {
	c := identified(t)
	completeIntake(t, c, "Fever", domain.SeverityMild)

	require.NoError(t, c.ReviseSymptoms())

	assert.Nil(t, c.Assessment())
	assert.Equal(t, ProgressIdentified, c.Progress())
	assert.Equal(t, StageSymptoms, c.Stage())
	assert.ErrorIs(t, c.Navigate(StageDiagnosis), ErrStageLocked)

	snap := c.Snapshot()
	assert.Equal(t, intake.StagePrimary, snap.Intake.Stage)
	assert.Equal(t, "Fever", snap.Intake.PrimarySymptom)
	assert.Equal(t, domain.SeverityMild, snap.Intake.Severity)

	// Re-submitting with a new severity yields a fresh diagnosis.
	assessment := completeIntake(t, c, "Fever", domain.SeveritySevere)
	assert.Equal(t, domain.UrgencyMedium, assessment.Diagnosis.Urgency)
}

func TestBackFromCompleteInvalidatesDiagnosis(t *testing.T) {
	c := identified(t)
	completeIntake(t, c, "Fever", domain.SeverityMild)

	_, err := c.Advance(intake.StageInput{Back: true})
	require.NoError(t, err)

	assert.Nil(t, c.Assessment())
	assert.Equal(t, StageSymptoms, c.Stage())
	assert.Equal(t, intake.StageFollowUp, c.Snapshot().Intake.Stage)
}

func TestAdvanceAtCompleteReturnsAssessment(t *testing.T) {
	c := identified(t)
	first := completeIntake(t, c, "Dizziness", domain.SeverityModerate)

	again, err := c.Advance(intake.StageInput{})

	require.NoError(t, err)
	assert.Equal(t, first.Diagnosis, again.Diagnosis)
}

func TestAssessmentIsCopy(t *testing.T) {
	c := identified(t)
	assessment := completeIntake(t, c, "Fever", domain.SeverityMild)

	assessment.Diagnosis.Conditions[0].Name = "tampered"
	assessment.Report.PrimarySymptom = "tampered"

	stored := c.Assessment()
	assert.Equal(t, "Viral Fever", stored.Diagnosis.Conditions[0].Name)
	assert.Equal(t, "Fever", stored.Report.PrimarySymptom)
}

func TestChatIsLazyAndPersonalized(t *testing.T) {
	c := identified(t)
	assert.Equal(t, 0, c.Snapshot().ChatLength)

	chat := c.Chat()
	assert.Same(t, chat, c.Chat())
	assert.Equal(t, advisory.Greeting(&domain.IdentityRecord{Name: "Meera"}), chat.Transcript()[0].Content)

	_, err := chat.Send(context.Background(), "fever")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Snapshot().ChatLength)
}

func TestChatWithoutIdentity(t *testing.T) {
	c := NewCoordinator("s", Options{})
	require.NoError(t, c.Navigate(StageChat))

	assert.Equal(t, advisory.Greeting(nil), c.Chat().Transcript()[0].Content)
}

func TestCoordinatorConcurrentAccess(t *testing.T) {
	c := identified(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = c.Snapshot()
		}()
		go func() {
			defer wg.Done()
			_ = c.Navigate(StageChat)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Chat().Send(context.Background(), "diet tips")
		}()
	}
	wg.Wait()

	assert.Equal(t, 21, c.Chat().Len())
}
