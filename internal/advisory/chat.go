package advisory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/symptom-triage-server/internal/domain"
)

// ChatSession owns one append-only transcript. Round-trips are serialized:
// a user message and its reply are always adjacent in the transcript.
type ChatSession struct {
	advisor    domain.Advisor
	replyDelay time.Duration
	now        func() time.Time

	turn chan struct{}

	mu         sync.RWMutex
	transcript []domain.ChatMessage
}

// NewChatSession creates a session whose transcript starts with the
// greeting for identity. replyDelay simulates typing time; zero disables it.
func NewChatSession(advisor domain.Advisor, identity *domain.IdentityRecord, replyDelay time.Duration) *ChatSession {
	if advisor == nil {
		advisor = NewMatcher()
	}
	c := &ChatSession{
		advisor:    advisor,
		replyDelay: replyDelay,
		now:        time.Now,
		turn:       make(chan struct{}, 1),
	}
	c.transcript = []domain.ChatMessage{c.message(domain.RoleAssistant, Greeting(identity))}
	return c
}

// Send appends text as a user message, waits out the reply delay and
// appends the assistant's reply, which is returned.
//
// Callers queue behind any round-trip already in flight. If ctx ends while
// queued nothing is recorded; if it ends during the reply delay the user
// message stays and the reply is dropped. Either way ctx.Err() is returned.
func (c *ChatSession) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, domain.NewIncompleteInputError("chat", "message")
	}

	select {
	case c.turn <- struct{}{}:
	case <-ctx.Done():
		return domain.ChatMessage{}, ctx.Err()
	}
	defer func() { <-c.turn }()

	c.append(c.message(domain.RoleUser, text))

	if c.replyDelay > 0 {
		timer := time.NewTimer(c.replyDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return domain.ChatMessage{}, ctx.Err()
		}
	}

	reply := c.message(domain.RoleAssistant, c.advisor.Advise(text))
	c.append(reply)
	return reply, nil
}

// Transcript returns a copy of all messages in order.
func (c *ChatSession) Transcript() []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.ChatMessage(nil), c.transcript...)
}

// Len returns the number of messages in the transcript.
func (c *ChatSession) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.transcript)
}

func (c *ChatSession) append(m domain.ChatMessage) {
	c.mu.Lock()
	c.transcript = append(c.transcript, m)
	c.mu.Unlock()
}

func (c *ChatSession) message(role domain.ChatRole, content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: c.now().UTC(),
	}
}
