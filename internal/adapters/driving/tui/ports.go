// Package tui provides an interactive terminal chat interface for pipewrench.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

// defaultUserID owns sessions started from the terminal.
const defaultUserID = "local"

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Retriever provides semantic search over indexed sources.
	Retriever driving.RetrieverService

	// Sessions lists stored conversations. Optional.
	Sessions driving.SessionService

	// UserID owns the sessions created by this UI. Empty selects "local".
	UserID string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	chat driving.ChatService,
	retriever driving.RetrieverService,
	sessions driving.SessionService,
) *Ports {
	return &Ports{
		Chat:      chat,
		Retriever: retriever,
		Sessions:  sessions,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}

func (p *Ports) userID() string {
	if p.UserID == "" {
		return defaultUserID
	}
	return p.UserID
}
