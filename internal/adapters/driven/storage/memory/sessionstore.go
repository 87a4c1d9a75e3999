package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
// Message ids are assigned from a single counter, so they increase in
// append order across all sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ChatSession
	messages map[string][]domain.ChatMessage
	nextID   int64
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.ChatSession),
		messages: make(map[string][]domain.ChatMessage),
	}
}

// CreateSession stores a new session.
func (s *SessionStore) CreateSession(_ context.Context, session domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return domain.ErrInvalidInput
	}
	s.sessions[session.ID] = session
	return nil
}

// GetSession retrieves a session by id.
func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// UpdateSession updates the title and last-activity time.
func (s *SessionStore) UpdateSession(_ context.Context, session domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.sessions[session.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Title = session.Title
	existing.UpdatedAt = session.UpdatedAt
	s.sessions[session.ID] = existing
	return nil
}

// ListSessions returns the sessions of a user, most recent activity first.
func (s *SessionStore) ListSessions(_ context.Context, userID string) ([]domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ChatSession, 0)
	for _, session := range s.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	slices.SortFunc(result, func(a, b domain.ChatSession) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

// AppendMessage appends a message and assigns its id.
func (s *SessionStore) AppendMessage(_ context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[msg.SessionID]; !ok {
		return nil, domain.ErrNotFound
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.nextID++
	msg.ID = s.nextID
	msg.Citations = slices.Clone(msg.Citations)

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return &msg, nil
}

// RecentMessages returns the last limit messages of a session, oldest first.
func (s *SessionStore) RecentMessages(_ context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}
	ordered := s.ordered(sessionID)
	if len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered, nil
}

// Messages returns every message of a session, oldest first.
func (s *SessionStore) Messages(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return s.ordered(sessionID), nil
}

// ordered returns a copy of a session's messages sorted by created-at then id.
func (s *SessionStore) ordered(sessionID string) []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.messages[sessionID])
	if out == nil {
		out = []domain.ChatMessage{}
	}
	slices.SortStableFunc(out, func(a, b domain.ChatMessage) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
