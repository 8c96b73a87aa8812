package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/intake"
	"github.com/symptom-triage-server/internal/service"
	"github.com/symptom-triage-server/internal/session"
)

type createSessionRequest struct {
	Identity *domain.IdentityRecord `json:"identity"`
}

type navigateRequest struct {
	Stage string `json:"stage" binding:"required"`
}

type primaryRequest struct {
	Symptom       string `json:"symptom"`
	CustomSymptom string `json:"custom_symptom"`
	Duration      string `json:"duration" binding:"omitempty,duration"`
	Severity      string `json:"severity" binding:"omitempty,severity"`
}

func (r primaryRequest) input() intake.PrimaryInput {
	return intake.PrimaryInput{
		Symptom:       r.Symptom,
		CustomSymptom: r.CustomSymptom,
		Duration:      domain.Duration(r.Duration),
		Severity:      domain.Severity(r.Severity),
	}
}

type toggleRequest struct {
	Symptom string `json:"symptom" binding:"required"`
}

type followUpRequest struct {
	Answers map[string]string `json:"answers"`
}

type advanceRequest struct {
	Back    bool              `json:"back"`
	Primary *primaryRequest   `json:"primary"`
	Toggle  []string          `json:"toggle"`
	Answers map[string]string `json:"answers"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type classifyRequest struct {
	PrimarySymptom     string            `json:"primary_symptom"`
	Duration           string            `json:"duration" binding:"omitempty,duration"`
	Severity           string            `json:"severity" binding:"omitempty,severity"`
	AdditionalSymptoms []string          `json:"additional_symptoms"`
	FollowUpAnswers    map[string]string `json:"follow_up_answers"`
}

func (r *classifyRequest) report() *domain.SymptomReport {
	return &domain.SymptomReport{
		PrimarySymptom:     r.PrimarySymptom,
		Duration:           domain.Duration(r.Duration),
		Severity:           domain.Severity(r.Severity),
		AdditionalSymptoms: r.AdditionalSymptoms,
		FollowUpAnswers:    r.FollowUpAnswers,
		SubmittedAt:        time.Now().UTC(),
	}
}

type adviseRequest struct {
	Question string `json:"question"`
}

type feedbackRequest struct {
	SessionID  string           `json:"session_id"`
	Report     *classifyRequest `json:"report"`
	Department string           `json:"department"`
	Urgency    string           `json:"urgency" binding:"omitempty,urgency"`
	Notes      string           `json:"notes" binding:"max=2000"`
}

// Sessions

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if !s.bindJSON(c, &req, true) {
		return
	}
	c.JSON(http.StatusCreated, s.service.StartSession(req.Identity))
}

func (s *Server) handleGetSession(c *gin.Context) {
	snap, err := s.service.GetSession(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.service.EndSession(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetIdentity(c *gin.Context) {
	var record domain.IdentityRecord
	if !s.bindJSON(c, &record, false) {
		return
	}
	snap, err := s.service.SetIdentity(c.Param("id"), record)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleNavigate(c *gin.Context) {
	var req navigateRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	snap, err := s.service.Navigate(c.Param("id"), session.Stage(req.Stage))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Intake wizard

func (s *Server) handleGetIntake(c *gin.Context) {
	draft, err := s.service.Intake(c.Param("id"))
	s.respondDraft(c, draft, err)
}

func (s *Server) handleAdvance(c *gin.Context) {
	var req advanceRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	in := intake.StageInput{Back: req.Back, Toggle: req.Toggle, Answers: req.Answers}
	if req.Primary != nil {
		primary := req.Primary.input()
		in.Primary = &primary
	}
	result, err := s.service.Advance(c.Param("id"), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSubmitPrimary(c *gin.Context) {
	var req primaryRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	draft, err := s.service.SubmitPrimary(c.Param("id"), req.input())
	s.respondDraft(c, draft, err)
}

func (s *Server) handleToggleAdditional(c *gin.Context) {
	var req toggleRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	draft, err := s.service.ToggleAdditional(c.Param("id"), req.Symptom)
	s.respondDraft(c, draft, err)
}

func (s *Server) handleContinueAdditional(c *gin.Context) {
	draft, err := s.service.ContinueAdditional(c.Param("id"))
	s.respondDraft(c, draft, err)
}

func (s *Server) handleCompleteFollowUp(c *gin.Context) {
	var req followUpRequest
	if !s.bindJSON(c, &req, true) {
		return
	}
	assessment, err := s.service.CompleteIntake(c.Param("id"), req.Answers)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleIntakeBack(c *gin.Context) {
	draft, err := s.service.IntakeBack(c.Param("id"))
	s.respondDraft(c, draft, err)
}

func (s *Server) handleRevise(c *gin.Context) {
	snap, err := s.service.ReviseSymptoms(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleGetDiagnosis(c *gin.Context) {
	assessment, err := s.service.Diagnosis(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) respondDraft(c *gin.Context, draft intake.Draft, err error) {
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// Chat

func (s *Server) handleGetTranscript(c *gin.Context) {
	messages, err := s.service.Transcript(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) handleSendChat(c *gin.Context) {
	var req chatRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	reply, err := s.service.SendChat(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Stateless endpoints

func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	result, err := s.service.Classify(req.report())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAdvise(c *gin.Context) {
	var req adviseRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	c.JSON(http.StatusOK, s.service.Advise(req.Question))
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Catalog())
}

// Feedback

func (s *Server) handleSubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if !s.bindJSON(c, &req, false) {
		return
	}
	in := service.FeedbackRequest{
		SessionID:  req.SessionID,
		Department: req.Department,
		Urgency:    domain.Urgency(req.Urgency),
		Notes:      req.Notes,
	}
	if req.Report != nil {
		in.Report = req.Report.report()
	}
	entry, err := s.service.SubmitFeedback(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleListFeedback(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page, err := s.service.ListFeedback(c.Request.Context(), limit, offset)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
