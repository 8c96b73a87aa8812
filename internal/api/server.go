package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/symptom-triage-server/internal/domain"
	"github.com/symptom-triage-server/internal/middleware"
	"github.com/symptom-triage-server/internal/monitoring"
	"github.com/symptom-triage-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	service       *service.TriageService
	metrics       *monitoring.Metrics
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	upgrader      websocket.Upgrader
	startedAt     time.Time
}

// NewServer creates a new HTTP server instance. metrics may be nil.
func NewServer(
	configManager domain.ConfigManager,
	svc *service.TriageService,
	metrics *monitoring.Metrics,
	logger *logrus.Logger,
) (*Server, error) {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if configManager.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.AuditLogger(logger))
	if metrics != nil {
		router.Use(metrics.Middleware())
	}
	if cfg.RateLimit.Enabled {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		router.Use(limiter.RateLimit())
	}

	server := &Server{
		configManager: configManager,
		service:       svc,
		metrics:       metrics,
		logger:        logger,
		router:        router,
		startedAt:     time.Now().UTC(),
	}
	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
	}

	server.setupRoutes()

	return server, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", s.metrics.Handler())
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/sessions", s.handleCreateSession)
		v1.GET("/sessions/:id", s.handleGetSession)
		v1.DELETE("/sessions/:id", s.handleDeleteSession)
		v1.PUT("/sessions/:id/identity", s.handleSetIdentity)
		v1.POST("/sessions/:id/navigate", s.handleNavigate)

		v1.GET("/sessions/:id/intake", s.handleGetIntake)
		v1.POST("/sessions/:id/intake", s.handleAdvance)
		v1.POST("/sessions/:id/intake/primary", s.handleSubmitPrimary)
		v1.POST("/sessions/:id/intake/additional/toggle", s.handleToggleAdditional)
		v1.POST("/sessions/:id/intake/additional", s.handleContinueAdditional)
		v1.POST("/sessions/:id/intake/followup", s.handleCompleteFollowUp)
		v1.POST("/sessions/:id/intake/back", s.handleIntakeBack)
		v1.POST("/sessions/:id/revise", s.handleRevise)
		v1.GET("/sessions/:id/diagnosis", s.handleGetDiagnosis)

		v1.GET("/sessions/:id/chat", s.handleGetTranscript)
		v1.POST("/sessions/:id/chat", s.handleSendChat)
		v1.GET("/sessions/:id/chat/ws", s.handleChatWebSocket)

		v1.POST("/classify", s.handleClassify)
		v1.POST("/advise", s.handleAdvise)
		v1.GET("/catalog", s.handleCatalog)

		v1.POST("/feedback", s.handleSubmitFeedback)
		v1.GET("/feedback", s.handleListFeedback)
	}
}

// handleHealth reports liveness and the state of the feedback store
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	feedbackStatus := "disabled"
	if s.service.FeedbackEnabled() {
		feedbackStatus = "ok"
		if err := s.service.Ping(c.Request.Context()); err != nil {
			s.logger.WithError(err).Warn("Feedback store health check failed")
			feedbackStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":          overall,
		"feedback":        feedbackStatus,
		"active_sessions": s.service.ActiveSessions(),
		"uptime":          time.Since(s.startedAt).Round(time.Second).String(),
		"version":         s.configManager.GetConfig().MCP.ServerVersion,
		"timestamp":       time.Now().UTC(),
	})
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}
