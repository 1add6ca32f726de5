package showcaller

import (
	"log/slog"
	"sync"
)

// Manager owns one Controller per open rundown.
type Manager struct {
	open   func(documentID string) DocumentSource
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewManager creates a controller registry. open binds a document id to
// its rundown source.
func NewManager(open func(documentID string) DocumentSource, opts Options, logger *slog.Logger) *Manager {
	return &Manager{
		open:        open,
		opts:        opts,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// Controller returns the controller for a rundown, creating it on first
// use.
func (m *Manager) Controller(documentID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[documentID]; ok {
		return c
	}
	c := NewController(m.open(documentID), m.opts, m.logger)
	m.controllers[documentID] = c
	return c
}

// Reset clears playback state for a rundown if a controller exists.
func (m *Manager) Reset(documentID string) {
	m.mu.Lock()
	c, ok := m.controllers[documentID]
	m.mu.Unlock()
	if ok {
		c.Reset()
	}
}

// Close tears down every controller.
func (m *Manager) Close() {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		controllers = append(controllers, c)
	}
	m.controllers = make(map[string]*Controller)
	m.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
