package driven

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// SessionStore persists chat sessions and their append-only message logs.
type SessionStore interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session domain.ChatSession) error

	// GetSession retrieves a session. Returns domain.ErrNotFound if absent.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// UpdateSession updates the title and last-activity time of a session.
	UpdateSession(ctx context.Context, session domain.ChatSession) error

	// ListSessions returns the sessions of a user, most recent activity first.
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error)

	// AppendMessage appends a message to its session and returns it with
	// the store-assigned id. Returns domain.ErrNotFound if the session is absent.
	AppendMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error)

	// RecentMessages returns the last limit messages of a session, oldest first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)

	// Messages returns every message of a session, oldest first.
	Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
