package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/feedback"
	"github.com/symptom-triage-server/internal/intake"
	"github.com/symptom-triage-server/internal/middleware"
	"github.com/symptom-triage-server/internal/service"
	"github.com/symptom-triage-server/internal/session"
)

// errorResponse maps an error to its HTTP status and body.
func errorResponse(err error, requestID string) (int, *domain.APIError) {
	var incomplete *domain.IncompleteInputError
	var validation *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &incomplete):
		apiErr := domain.NewAPIError(domain.ErrCodeIncompleteInput, "required fields are missing", incomplete.Error(), requestID)
		apiErr.Fields = incomplete.Fields
		return http.StatusUnprocessableEntity, apiErr

	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, domain.NewAPIError(domain.ErrCodeSessionNotFound, "session not found", "", requestID)

	case errors.Is(err, session.ErrStageLocked),
		errors.Is(err, intake.ErrWrongStage),
		errors.Is(err, service.ErrNoAssessment):
		return http.StatusConflict, domain.NewAPIError(domain.ErrCodeStageLocked, "operation not available at this stage", err.Error(), requestID)

	case errors.As(err, &fieldErrs):
		apiErr := domain.NewAPIError(domain.ErrCodeInvalidInput, "request validation failed", fieldErrs.Error(), requestID)
		for _, fe := range fieldErrs {
			apiErr.Fields = append(apiErr.Fields, fe.Field())
		}
		return http.StatusBadRequest, apiErr

	case errors.As(err, &validation):
		apiErr := domain.NewAPIError(domain.ErrCodeInvalidInput, validation.Message, validation.Error(), requestID)
		apiErr.Fields = []string{validation.Field}
		return http.StatusBadRequest, apiErr

	case errors.Is(err, session.ErrUnknownStage),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.EOF):
		return http.StatusBadRequest, domain.NewAPIError(domain.ErrCodeInvalidInput, "malformed request", err.Error(), requestID)

	case errors.Is(err, service.ErrFeedbackDisabled),
		errors.Is(err, feedback.ErrUnavailable):
		return http.StatusServiceUnavailable, domain.NewAPIError(domain.ErrCodeFeedbackUnavailable, "feedback store is unavailable", err.Error(), requestID)

	default:
		return http.StatusInternalServerError, domain.NewAPIError(domain.ErrCodeInternalServer, "internal server error", "", requestID)
	}
}

// writeError aborts the request with the mapped error body.
func (s *Server) writeError(c *gin.Context, err error) {
	status, body := errorResponse(err, middleware.RequestID(c))
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("request_id", body.RequestID).Error("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into obj. An empty body is accepted when
// optional is set.
func (s *Server) bindJSON(c *gin.Context, obj any, optional bool) bool {
	if optional && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		s.writeError(c, fmt.Errorf("decoding request: %w", err))
		return false
	}
	return true
}
