package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages chat sessions and their message logs, and
// serialises turns within one session.
type SessionService struct {
	store driven.SessionStore
	locks *keyedMutex
	now   func() time.Time
	newID func() string
}

// NewSessionService creates a new session service.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{
		store: store,
		locks: newKeyedMutex(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// GetOrCreateSession returns sessionID if it exists and belongs to userID.
// An empty sessionID opens a new session. Unknown sessions and sessions of
// other users both report domain.ErrNotFound.
func (s *SessionService) GetOrCreateSession(ctx context.Context, sessionID, userID string) (string, error) {
	if sessionID == "" {
		now := s.now()
		session := domain.ChatSession{
			ID:        s.newID(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateSession(ctx, session); err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		return session.ID, nil
	}

	if _, err := s.owned(ctx, sessionID, userID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// AppendMessage appends a message and bumps the session's last activity.
// The first user message also titles an untitled session.
func (s *SessionService) AppendMessage(
	ctx context.Context, sessionID string, role domain.Role, content string, citations []domain.Citation,
) (*domain.ChatMessage, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrInvalidInput, role)
	}

	msg, err := s.store.AppendMessage(ctx, domain.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Citations: citations,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	session.UpdatedAt = msg.CreatedAt
	if session.Title == "" && role == domain.RoleUser {
		session.Title = domain.SessionTitle(content)
	}
	if err := s.store.UpdateSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return msg, nil
}

// History returns the most recent limit messages, oldest first.
func (s *SessionService) History(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	return s.store.RecentMessages(ctx, sessionID, limit)
}

// Transcript returns the full ordered history of a session owned by userID.
func (s *SessionService) Transcript(ctx context.Context, sessionID, userID string) ([]domain.ChatMessage, error) {
	if _, err := s.owned(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.store.Messages(ctx, sessionID)
}

// ListSessions returns a user's sessions, most recent activity first.
func (s *SessionService) ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	return s.store.ListSessions(ctx, userID)
}

// Lock acquires the per-session turn lock and returns its release function.
func (s *SessionService) Lock(sessionID string) (unlock func()) {
	return s.locks.lock(sessionID)
}

func (s *SessionService) owned(ctx context.Context, sessionID, userID string) (*domain.ChatSession, error) {
	session, err := s.store.GetSession(ctx, strings.TrimSpace(sessionID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}
	return session, nil
}

// keyedMutex hands out one mutex per key and forgets it once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.Unlock()
			k.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// size reports the number of keys currently held or awaited.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
