package domain

import (
	"time"
	"unicode/utf8"
)

// Role identifies the author of a chat message.
type Role string

// Available message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ExcerptLength is the number of characters kept in a citation excerpt.
const ExcerptLength = 200

// sessionTitleLength caps titles derived from the first user message.
const sessionTitleLength = 50

// ChatSession is a conversation between one user and the assistant.
type ChatSession struct {
	// ID is a UUID string.
	ID string

	// UserID owns the session.
	UserID string

	// Title is derived from the first user message.
	Title string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	// UpdatedAt is the time of the last appended message.
	UpdatedAt time.Time
}

// ChatMessage is a single turn entry. Messages are append-only.
type ChatMessage struct {
	// ID is assigned by the store and breaks created-at ties.
	ID int64

	// SessionID links to the owning session.
	SessionID string

	// Role identifies the author.
	Role Role

	// Content is the message text.
	Content string

	// Citations lists the chunks the answer was grounded on (assistant only).
	Citations []Citation

	// CreatedAt is when the message was appended.
	CreatedAt time.Time
}

// Citation references a retrieved chunk supporting an answer.
type Citation struct {
	// Source is the citation label of the chunk.
	Source string `json:"source"`

	// Score is the relevance score at retrieval time.
	Score float64 `json:"score"`

	// Excerpt is the start of the chunk text.
	Excerpt string `json:"excerpt"`
}

// NewCitation builds a citation from a search result.
func NewCitation(r SearchResult) Citation {
	return Citation{
		Source:  r.Source,
		Score:   r.Score,
		Excerpt: Excerpt(r.Content, ExcerptLength),
	}
}

// Excerpt returns the first n characters of s followed by "..." when s is longer.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// SessionTitle derives a session title from its first user message.
func SessionTitle(message string) string {
	title := Excerpt(collapseSpace(message), sessionTitleLength)
	if title == "" {
		return "New chat"
	}
	return title
}

func collapseSpace(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if !space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = true
			continue
		}
		space = false
		out = append(out, r)
	}
	if len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out)
}

// ChatRequest is one user turn submitted to the orchestrator.
type ChatRequest struct {
	// Message is the user question.
	Message string

	// SessionID continues an existing session; empty starts a new one.
	SessionID string

	// UserID identifies the caller.
	UserID string

	// FileID scopes retrieval to one uploaded file.
	FileID string
}

// ChatResponse is the orchestrator's answer to one turn.
type ChatResponse struct {
	// Answer is the generated (or fallback) reply.
	Answer string `json:"answer"`

	// SessionID is the session the turn was recorded in.
	SessionID string `json:"session_id"`

	// Sources are the citations for the chunks used as context.
	Sources []Citation `json:"sources"`

	// Degraded is set when generation failed and Answer is the fallback text.
	Degraded bool `json:"degraded,omitempty"`
}
