package mcp

import (
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

// defaultUserID owns sessions opened through MCP when no user is configured.
const defaultUserID = "mcp"

// Ports is everything the server needs from the core. Only Retriever is
// required; the chat tool and session resources report unavailability
// when their port is nil.
type Ports struct {
	// Retriever provides indexing and search.
	Retriever driving.RetrieverService

	// Chat answers questions grounded on the knowledge base.
	Chat driving.ChatService

	// Sessions exposes chat history.
	Sessions driving.SessionService

	// UserID owns the sessions created and read through this server.
	UserID string

	// Version is reported in the initialize handshake.
	Version string
}

func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}

func (p *Ports) version() string {
	if p.Version == "" {
		return "dev"
	}
	return p.Version
}

func (p *Ports) userID() string {
	if p.UserID == "" {
		return defaultUserID
	}
	return p.UserID
}
