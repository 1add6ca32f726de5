package guard

import (
	"log/slog"
	"sync"
)

// Manager hands out one guard per editing session. Each client types
// into its own fields, so protection state is tracked per session.
type Manager struct {
	newWriter func(tenantID, documentID, sessionID string) FieldWriter
	callbacks Callbacks
	opts      Options
	logger    *slog.Logger

	mu     sync.Mutex
	guards map[string]*Service
}

// NewManager creates a guard manager. newWriter builds the rebroadcast
// writer bound to a session's rundown.
func NewManager(newWriter func(tenantID, documentID, sessionID string) FieldWriter, callbacks Callbacks, opts Options, logger *slog.Logger) *Manager {
	return &Manager{
		newWriter: newWriter,
		callbacks: callbacks,
		opts:      opts,
		logger:    logger,
		guards:    make(map[string]*Service),
	}
}

// Guard returns the guard for a session, creating it on first use.
func (m *Manager) Guard(tenantID, documentID, sessionID string) *Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.guards[sessionID]; ok {
		return g
	}
	g := NewService(m.newWriter(tenantID, documentID, sessionID), m.callbacks, m.opts, m.logger)
	m.guards[sessionID] = g
	return g
}

// Release drops the guard for a closed session.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guards, sessionID)
}
