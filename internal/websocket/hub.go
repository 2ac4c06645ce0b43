package websocket

import (
	"log/slog"
	"sync"
)

// Hub maintains the set of open sessions
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	closed   bool
	logger   *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions: make(map[*Session]struct{}),
		logger:   logger.With(slog.String("component", "websocket.hub")),
	}
}

// Register adds s to the hub. It reports false once the hub is closed.
func (h *Hub) Register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.logger.Debug("session registered",
		slog.String("session_id", s.ID()),
		slog.Int("total_sessions", len(h.sessions)))
	return true
}

// Unregister removes s from the hub
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	h.logger.Debug("session unregistered",
		slog.String("session_id", s.ID()),
		slog.Int("total_sessions", len(h.sessions)))
}

// Count returns the number of open sessions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll closes every open session and refuses new ones. Hijacked
// connections are not closed by http.Server.Shutdown, so the application
// calls this on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if len(sessions) > 0 {
		h.logger.Info("closed websocket sessions", slog.Int("count", len(sessions)))
	}
}
