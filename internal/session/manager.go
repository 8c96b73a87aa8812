package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-server/internal/domain"
)

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Manager is a bounded in-memory registry of coordinators. When full, the
// least recently used session is evicted.
type Manager struct {
	sessions *lru.Cache[string, *Coordinator]
	opts     Options
	logger   *logrus.Logger
}

// NewManager creates a registry holding at most maxSessions sessions.
func NewManager(maxSessions int, opts Options, logger *logrus.Logger) (*Manager, error) {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	m := &Manager{opts: opts, logger: logger}

	cache, err := lru.NewWithEvict[string, *Coordinator](maxSessions, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}
	m.sessions = cache
	return m, nil
}

// Create starts a new session. With a non-nil identity it starts at the
// symptoms view.
func (m *Manager) Create(identity *domain.IdentityRecord) *Coordinator {
	c := NewCoordinator(uuid.NewString(), m.opts)
	if identity != nil {
		c.SetIdentity(*identity)
	}
	m.sessions.Add(c.ID(), c)
	return c
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Coordinator, error) {
	c, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Delete ends the session with id.
func (m *Manager) Delete(id string) error {
	if !m.sessions.Remove(id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

func (m *Manager) onEvict(id string, c *Coordinator) {
	if m.logger == nil {
		return
	}
	m.logger.WithFields(logrus.Fields{
		"session_id": id,
		"stage":      c.Stage(),
	}).Debug("Session removed from registry")
}
