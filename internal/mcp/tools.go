package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/intake"
	"github.com/symptom-triage-server/internal/service"
)

// ClassifySymptomsParams defines parameters for the classify_symptoms tool
type ClassifySymptomsParams struct {
	PrimarySymptom     string            `json:"primary_symptom"`
	Duration           string            `json:"duration"`
	Severity           string            `json:"severity"`
	AdditionalSymptoms []string          `json:"additional_symptoms,omitempty"`
	FollowUpAnswers    map[string]string `json:"follow_up_answers,omitempty"`
}

func (p ClassifySymptomsParams) report() *domain.SymptomReport {
	return &domain.SymptomReport{
		PrimarySymptom:     p.PrimarySymptom,
		Duration:           domain.Duration(p.Duration),
		Severity:           domain.Severity(p.Severity),
		AdditionalSymptoms: p.AdditionalSymptoms,
		FollowUpAnswers:    p.FollowUpAnswers,
		SubmittedAt:        time.Now().UTC(),
	}
}

// FollowUpParams defines parameters for the get_follow_up_questions tool
type FollowUpParams struct {
	Symptom string `json:"symptom"`
}

// FollowUpResult is the structured output of get_follow_up_questions.
type FollowUpResult struct {
	Symptom   string            `json:"symptom"`
	Questions []intake.Question `json:"questions"`
}

// HealthAdviceParams defines parameters for the get_health_advice tool
type HealthAdviceParams struct {
	Question string `json:"question"`
}

// StartChatParams defines parameters for the start_chat_session tool
type StartChatParams struct {
	PatientName string `json:"patient_name,omitempty"`
}

// SendChatParams defines parameters for the send_chat_message tool
type SendChatParams struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SubmitFeedbackParams defines parameters for the submit_triage_feedback tool
type SubmitFeedbackParams struct {
	Report     ClassifySymptomsParams `json:"report"`
	Department string                 `json:"department,omitempty"`
	Urgency    string                 `json:"urgency,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
}

// ListFeedbackParams defines parameters for the list_triage_feedback tool
type ListFeedbackParams struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ExportFeedbackParams defines parameters for the export_triage_feedback tool
type ExportFeedbackParams struct{}

// ImportFeedbackParams defines parameters for the import_triage_feedback tool
type ImportFeedbackParams struct {
	FilePath string `json:"file_path"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "classify_symptoms",
		Description: "Rank likely conditions for a symptom report and suggest urgency and department. duration is one of less-than-1-day, 1-3-days, 4-7-days, 1-2-weeks, more-than-2-weeks; severity is mild, moderate or severe.",
	}, s.handleClassifySymptoms)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_follow_up_questions",
		Description: "List the follow-up questions asked for a primary symptom.",
	}, s.handleFollowUpQuestions)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_health_advice",
		Description: "Answer a free-text health question with general guidance.",
	}, s.handleHealthAdvice)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_chat_session",
		Description: "Open an advisory chat session and return its id and greeting.",
	}, s.handleStartChat)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "send_chat_message",
		Description: "Send a message in an advisory chat session and return the reply.",
	}, s.handleSendChat)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "submit_triage_feedback",
		Description: "Record a clinician's verdict on the triage suggested for a symptom report.",
	}, s.handleSubmitFeedback)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_triage_feedback",
		Description: "List recorded clinician verdicts, newest first, with agreement statistics.",
	}, s.handleListFeedback)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "export_triage_feedback",
		Description: "Export every recorded verdict to a JSON file in the data directory.",
	}, s.handleExportFeedback)
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "import_triage_feedback",
		Description: "Import verdicts from a JSON export file. Reports already recorded are skipped.",
	}, s.handleImportFeedback)
}

func (s *Server) handleClassifySymptoms(ctx context.Context, req *mcp.CallToolRequest, params ClassifySymptomsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "classify_symptoms").Info("Tool invoked")

	result, err := s.service.Classify(params.report())
	if err != nil {
		return s.createErrorResult("Cannot classify symptoms", err), nil, nil
	}

	top := result.TopCondition()
	summary := fmt.Sprintf("Most likely: %s (%d%%). Department: %s. %s: %s.",
		top.Name, top.Confidence, result.Department, result.Urgency.Label(), result.Urgency.Guidance())
	if len(result.RedFlags) > 0 {
		summary += fmt.Sprintf(" Red flags: %s.", strings.Join(result.RedFlags, ", "))
	}
	return jsonResult(summary, result), result, nil
}

func (s *Server) handleFollowUpQuestions(ctx context.Context, req *mcp.CallToolRequest, params FollowUpParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "get_follow_up_questions").Info("Tool invoked")

	if strings.TrimSpace(params.Symptom) == "" {
		return s.createErrorResult("Missing required parameter", errors.New("symptom is required")), nil, nil
	}
	questions := s.service.FollowUpQuestions(params.Symptom)
	summary := fmt.Sprintf("%d follow-up questions for %s", len(questions), params.Symptom)
	if len(questions) == 0 {
		summary = fmt.Sprintf("No follow-up questions for %s", params.Symptom)
	}
	out := &FollowUpResult{Symptom: params.Symptom, Questions: questions}
	if out.Questions == nil {
		out.Questions = []intake.Question{}
	}
	return jsonResult(summary, out), out, nil
}

func (s *Server) handleHealthAdvice(ctx context.Context, req *mcp.CallToolRequest, params HealthAdviceParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "get_health_advice").Info("Tool invoked")

	advice := s.service.Advise(params.Question)
	return textResult(advice.Response), advice, nil
}

func (s *Server) handleStartChat(ctx context.Context, req *mcp.CallToolRequest, params StartChatParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "start_chat_session").Info("Tool invoked")

	var identity *domain.IdentityRecord
	if name := strings.TrimSpace(params.PatientName); name != "" {
		identity = &domain.IdentityRecord{Name: name}
	}
	started := s.service.StartSession(identity)
	out := map[string]string{
		"session_id": started.Session.ID,
		"greeting":   started.Greeting,
	}
	return jsonResult(started.Greeting, out), out, nil
}

func (s *Server) handleSendChat(ctx context.Context, req *mcp.CallToolRequest, params SendChatParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{"tool": "send_chat_message", "session_id": params.SessionID}).Info("Tool invoked")

	reply, err := s.service.SendChat(ctx, params.SessionID, params.Message)
	if err != nil {
		return s.createErrorResult("Chat message failed", err), nil, nil
	}
	return textResult(reply.Content), reply, nil
}

func (s *Server) handleSubmitFeedback(ctx context.Context, req *mcp.CallToolRequest, params SubmitFeedbackParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "submit_triage_feedback").Info("Tool invoked")

	entry, err := s.service.SubmitFeedback(ctx, service.FeedbackRequest{
		Report:     params.Report.report(),
		Department: params.Department,
		Urgency:    domain.Urgency(params.Urgency),
		Notes:      params.Notes,
	})
	if err != nil {
		return s.createErrorResult("Failed to record feedback", err), nil, nil
	}

	verdict := "disagrees with"
	if entry.Agreed {
		verdict = "agrees with"
	}
	summary := fmt.Sprintf("Feedback %d recorded: clinician %s the suggested %s / %s.",
		entry.ID, verdict, entry.SuggestedDepartment, entry.SuggestedUrgency)
	return jsonResult(summary, entry), entry, nil
}

func (s *Server) handleListFeedback(ctx context.Context, req *mcp.CallToolRequest, params ListFeedbackParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_triage_feedback").Info("Tool invoked")

	page, err := s.service.ListFeedback(ctx, params.Limit, params.Offset)
	if err != nil {
		return s.createErrorResult("Failed to list feedback", err), nil, nil
	}
	summary := fmt.Sprintf("%d of %d verdicts, %.0f%% agreement", len(page.Entries), page.Stats.Total, page.Stats.Agreement*100)
	return jsonResult(summary, page), page, nil
}

func (s *Server) handleExportFeedback(ctx context.Context, req *mcp.CallToolRequest, params ExportFeedbackParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "export_triage_feedback").Info("Tool invoked")

	result, err := s.service.ExportFeedback(ctx, s.config.ExportDir())
	if err != nil {
		return s.createErrorResult("Failed to export feedback", err), nil, nil
	}
	return textResult(fmt.Sprintf("Exported %d feedback entries to %s", result.Count, result.FilePath)), result, nil
}

func (s *Server) handleImportFeedback(ctx context.Context, req *mcp.CallToolRequest, params ImportFeedbackParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "import_triage_feedback").Info("Tool invoked")

	if strings.TrimSpace(params.FilePath) == "" {
		return s.createErrorResult("Missing required parameter", errors.New("file_path is required")), nil, nil
	}
	result, err := s.service.ImportFeedback(ctx, params.FilePath)
	if err != nil {
		return s.createErrorResult("Failed to import feedback", err), nil, nil
	}
	return textResult(fmt.Sprintf("Imported %d feedback entries, skipped %d", result.Imported, result.Skipped)), result, nil
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	s.logger.WithError(err).Debug(message)

	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// jsonResult returns a one-line summary followed by the JSON payload.
func jsonResult(summary string, payload any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return textResult(summary)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summary},
			&mcp.TextContent{Text: string(data)},
		},
	}
}
