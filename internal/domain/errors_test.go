package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Stage locked",
			code:      ErrCodeStageLocked,
			message:   "Stage is not reachable yet",
			details:   "diagnosis requires a completed assessment",
			requestID: "req-123",
		},
		{
			name:      "Feedback unavailable",
			code:      ErrCodeFeedbackUnavailable,
			message:   "Feedback store is unavailable",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.requestID)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.details, err.Details)
			assert.Equal(t, tt.requestID, err.RequestID)
			assert.WithinDuration(t, time.Now(), err.Timestamp, time.Minute)
			assert.Equal(t, tt.code+": "+tt.message, err.Error())
		})
	}
}

func TestIncompleteInputError(t *testing.T) {
	err := NewIncompleteInputError("primary", "primary_symptom", "severity")

	assert.Equal(t, "incomplete input at primary stage: missing primary_symptom, severity", err.Error())
	assert.True(t, errors.Is(err, ErrIncompleteInput))

	wrapped := fmt.Errorf("submit: %w", err)
	assert.True(t, errors.Is(wrapped, ErrIncompleteInput))

	var target *IncompleteInputError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, []string{"primary_symptom", "severity"}, target.Fields)

	assert.False(t, errors.Is(errors.New("other"), ErrIncompleteInput))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("duration", "unknown duration", "a-fortnight")

	assert.Equal(t, "duration", err.Field)
	assert.Equal(t, "a-fortnight", err.Value)
	assert.Equal(t, "validation error for field 'duration': unknown duration", err.Error())
}
