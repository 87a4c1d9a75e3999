package driving

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// ChatService answers user questions grounded on retrieved knowledge.
type ChatService interface {
	// Chat runs one turn: retrieve, assemble the prompt, generate, persist.
	// Generation failures never surface as errors; the response carries a
	// fallback answer with Degraded set instead.
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// SessionService exposes chat session history to external actors.
type SessionService interface {
	// GetOrCreateSession resolves an explicit session id or opens a new session.
	GetOrCreateSession(ctx context.Context, sessionID, userID string) (string, error)

	// ListSessions returns a user's sessions, most recent first.
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error)

	// Transcript returns the full ordered history of a session owned by userID.
	Transcript(ctx context.Context, sessionID, userID string) ([]domain.ChatMessage, error)
}
