// Package mcp exposes the triage engine as a Model Context Protocol tool
// server. It needs no external services: sessions live in memory and
// clinician feedback is kept in SQLite under the data directory.
package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/config"
	"github.com/symptom-triage-server/internal/feedback"
	"github.com/symptom-triage-server/internal/service"
	"github.com/symptom-triage-server/internal/session"
)

// Server is the MCP tool server.
type Server struct {
	config        *config.LiteConfig
	mcpServer     *mcp.Server
	service       *service.TriageService
	feedbackStore feedback.Store
	logger        *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server) error

// WithFeedbackStore sets a custom feedback store.
func WithFeedbackStore(store feedback.Store) ServerOption {
	return func(s *Server) error {
		s.feedbackStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates the MCP server. Unless a store is supplied, feedback goes
// to a SQLite file in the data directory when enabled.
func NewServer(cfg *config.LiteConfig, opts ...ServerOption) (*Server, error) {
	// stdout carries the protocol, so logs go to stderr
	server := &Server{
		config: cfg,
		logger: config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if server.feedbackStore == nil && cfg.FeedbackEnabled {
		store, err := feedback.NewSQLiteStore(cfg.FeedbackDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create feedback store: %w", err)
		}
		server.feedbackStore = store
	}

	sessions, err := session.NewManager(cfg.MaxSessions, session.Options{ReplyDelay: cfg.ReplyDelay}, server.logger)
	if err != nil {
		return nil, err
	}
	server.service = service.NewTriageService(server.logger, sessions, server.feedbackStore, nil)

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)
	server.registerTools()

	server.logger.WithFields(logrus.Fields{
		"data_dir": cfg.DataDir,
		"feedback": server.feedbackStore != nil,
	}).Info("MCP server initialized")
	return server, nil
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("server", s.config.ServerName).Info("Starting MCP server on stdio")
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close releases the feedback store.
func (s *Server) Close() error {
	if s.feedbackStore == nil {
		return nil
	}
	if err := s.feedbackStore.Close(); err != nil {
		s.logger.WithError(err).Error("Failed to close feedback store")
		return err
	}
	return nil
}
