package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/symptom-triage-server/internal/middleware"
)

// handleChatWebSocket streams a session's chat. Every text frame is a user
// message; each reply or error goes back as one JSON frame. Closing the
// socket cancels the reply in flight.
func (s *Server) handleChatWebSocket(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.service.GetSession(id); err != nil {
		s.writeError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).WithField("session_id", id).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	requestID := middleware.RequestID(c)
	messages := make(chan string)
	go func() {
		defer close(messages)
		defer cancel()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.TextMessage {
				continue
			}
			select {
			case messages <- string(data):
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.WithField("session_id", id).Debug("Chat stream opened")
	for text := range messages {
		reply, err := s.service.SendChat(ctx, id, text)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			_, body := errorResponse(err, requestID)
			if err := conn.WriteJSON(body); err != nil {
				break
			}
			continue
		}
		if err := conn.WriteJSON(reply); err != nil {
			break
		}
	}
	s.logger.WithField("session_id", id).Debug("Chat stream closed")
}
