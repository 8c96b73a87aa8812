package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Fields    []string  `json:"fields,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeIncompleteInput     = "INCOMPLETE_INPUT"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeStageLocked         = "STAGE_LOCKED"
	ErrCodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	ErrCodeFeedbackUnavailable = "FEEDBACK_UNAVAILABLE"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
)

// ErrIncompleteInput is matched by every *IncompleteInputError via errors.Is.
var ErrIncompleteInput = errors.New("incomplete input")

// IncompleteInputError reports required fields missing at a stage transition.
// It is recoverable: the caller re-prompts and no entered value is discarded.
type IncompleteInputError struct {
	Stage  string   `json:"stage"`
	Fields []string `json:"fields"`
}

// Error implements the error interface
func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("incomplete input at %s stage: missing %s", e.Stage, strings.Join(e.Fields, ", "))
}

// Is lets errors.Is(err, ErrIncompleteInput) match.
func (e *IncompleteInputError) Is(target error) bool {
	return target == ErrIncompleteInput
}

// NewIncompleteInputError creates a new IncompleteInputError
func NewIncompleteInputError(stage string, fields ...string) *IncompleteInputError {
	return &IncompleteInputError{
		Stage:  stage,
		Fields: fields,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
