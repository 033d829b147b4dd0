package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"freelancehub/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrHubClosed         = errors.New("realtime hub is closed")
	ErrSessionClosed     = errors.New("session is closed")
	ErrSessionBacklogged = errors.New("session send buffer is full")
)

// Session is one live connection of an authenticated user.
type Session interface {
	ID() string
	UserID() string
	// Send enqueues e without blocking. It fails with ErrSessionBacklogged
	// when the client is not keeping up and ErrSessionClosed after Close.
	Send(e Event) error
	Close()
}

// Hub tracks the live sessions of every connected user. A user may hold any
// number of sessions; events for a user go to all of them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[string]Session
	closed   bool
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[string]Session),
		logger:   logger,
	}
}

func (h *Hub) Register(s Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	set, ok := h.sessions[s.UserID()]
	if !ok {
		set = make(map[string]Session)
		h.sessions[s.UserID()] = set
	}
	set[s.ID()] = s
	h.logger.Debug("session registered",
		zap.String("userId", s.UserID()), zap.String("sessionId", s.ID()), zap.Int("sessions", len(set)))
	return nil
}

// Deregister removes s if it is still the registered handle for its id. It is
// safe to call more than once.
func (h *Hub) Deregister(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[s.UserID()]
	if !ok {
		return
	}
	if cur, ok := set[s.ID()]; !ok || cur != s {
		return
	}
	delete(set, s.ID())
	if len(set) == 0 {
		delete(h.sessions, s.UserID())
	}
	h.logger.Debug("session deregistered", zap.String("userId", s.UserID()), zap.String("sessionId", s.ID()))
}

// SessionCount returns how many live sessions userID holds.
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) Online(userID string) bool {
	return h.SessionCount(userID) > 0
}

// PushNotification enqueues a copy of n; writers serialise it after the call returns.
func (h *Hub) PushNotification(_ context.Context, userID string, n *models.Notification) (int, error) {
	cp := *n
	return h.Broadcast(userID, NewNotificationEvent(&cp))
}

func (h *Hub) PushUnreadCount(_ context.Context, userID string, count int64) (int, error) {
	return h.Broadcast(userID, NewCountEvent(count))
}

// Broadcast enqueues e on every session of userID and returns how many
// accepted it. A session whose buffer is full is closed and dropped so that
// one slow client never delays the others.
func (h *Hub) Broadcast(userID string, e Event) (int, error) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return 0, ErrHubClosed
	}
	targets := make([]Session, 0, len(h.sessions[userID]))
	for _, s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	var delivered int
	var errs error
	for _, s := range targets {
		err := s.Send(e)
		if err == nil {
			delivered++
			continue
		}
		errs = multierr.Append(errs, fmt.Errorf("session %s: %w", s.ID(), err))
		if errors.Is(err, ErrSessionBacklogged) || errors.Is(err, ErrSessionClosed) {
			h.logger.Warn("dropping session",
				zap.String("userId", userID), zap.String("sessionId", s.ID()), zap.Error(err))
			s.Close()
			h.Deregister(s)
		}
	}
	return delivered, errs
}

// Close closes every session and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []Session
	for _, set := range h.sessions {
		for _, s := range set {
			all = append(all, s)
		}
	}
	h.sessions = make(map[string]map[string]Session)
	h.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	h.logger.Info("realtime hub closed", zap.Int("sessions", len(all)))
}
