package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/source"
)

// Manager owns the live play sessions, keyed by an opaque id. Sessions are
// ephemeral: they are never persisted and idle ones are pruned.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	source   source.QuestionSource
	ttl      time.Duration
	opts     []Option
	log      *logger.Logger
}

func NewManager(src source.QuestionSource, ttl time.Duration, opts ...Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		source:   src,
		ttl:      ttl,
		opts:     opts,
		log:      logger.Default().WithPrefix("game"),
	}
}

// Create registers a new session and returns its id.
func (m *Manager) Create() (string, *Session) {
	id := newSessionID()
	s := NewSession(m.source, m.opts...)

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.log.Debug("session created: id=%s, live=%d", id, n)
	return id, s
}

// Get returns the session for id, or false when it does not exist.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Prune drops sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.ttl {
			s.Close()
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info("pruned %d idle session(s), %d remaining", removed, len(m.sessions))
	}
	return removed
}

// Run prunes idle sessions periodically until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Debug("session janitor running every %v", interval)
	for {
		select {
		case <-ctx.Done():
			m.log.Debug("session janitor stopped")
			return
		case now := <-ticker.C:
			m.Prune(now)
		}
	}
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
