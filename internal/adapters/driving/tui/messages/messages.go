// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// SearchCompleted carries retrieval results for Query back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ChatAnswered carries the orchestrator's reply to one turn.
type ChatAnswered struct {
	Question string
	Response *domain.ChatResponse
	Err      error
}

// SessionsLoaded carries the user's chat sessions.
type SessionsLoaded struct {
	Sessions []domain.ChatSession
	Err      error
}

// SessionSelected asks the app to resume a session in the chat view.
type SessionSelected struct {
	Session domain.ChatSession
}

// TranscriptLoaded carries the full message log of a session.
type TranscriptLoaded struct {
	SessionID string
	Messages  []domain.ChatMessage
	Err       error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewSearch is the raw retrieval view.
	ViewSearch
	// ViewSessions lists past chat sessions.
	ViewSessions
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSearch:
		return "search"
	case ViewSessions:
		return "sessions"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
