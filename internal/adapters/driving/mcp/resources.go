package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Pipewrench resources.
	uriScheme = "pipewrench://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Documents, reports and files in the knowledge base",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Chat sessions, most recent first",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/messages",
		Name:        "session-messages",
		Description: "Full message history of a chat session",
		MIMEType:    "application/json",
	}, s.handleMessagesResource)
}

// handleSourcesResource returns the source catalogue.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sources, err := s.ports.Retriever.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	type sourceInfo struct {
		Kind   string `json:"kind"`
		ID     string `json:"id"`
		Title  string `json:"title"`
		Chunks int    `json:"chunks"`
	}

	infos := make([]sourceInfo, len(sources))
	for i := range sources {
		infos[i] = sourceInfo{
			Kind:   string(sources[i].Kind),
			ID:     sources[i].ID,
			Title:  sources[i].DisplayTitle(),
			Chunks: sources[i].ChunkCount,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleSessionsResource returns the sessions of the configured user.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sessions == nil {
		return jsonResult(req.Params.URI, []struct{}{})
	}

	sessions, err := s.ports.Sessions.ListSessions(ctx, s.ports.userID())
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type sessionInfo struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		UpdatedAt string `json:"updated_at"`
		URI       string `json:"uri"`
	}

	infos := make([]sessionInfo, len(sessions))
	for i := range sessions {
		infos[i] = sessionInfo{
			ID:        sessions[i].ID,
			Title:     sessions[i].Title,
			UpdatedAt: sessions[i].UpdatedAt.Format(time.RFC3339),
			URI:       uriScheme + "sessions/" + sessions[i].ID + "/messages",
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleMessagesResource returns the transcript of one session.
func (s *Server) handleMessagesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sessions == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	messages, err := s.ports.Sessions.Transcript(ctx, sessionID, s.ports.userID())
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type messageInfo struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Sources   any    `json:"sources,omitempty"`
		CreatedAt string `json:"created_at"`
	}

	infos := make([]messageInfo, len(messages))
	for i := range messages {
		infos[i] = messageInfo{
			Role:      string(messages[i].Role),
			Content:   messages[i].Content,
			CreatedAt: messages[i].CreatedAt.Format(time.RFC3339),
		}
		if len(messages[i].Citations) > 0 {
			infos[i].Sources = messages[i].Citations
		}
	}

	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like pipewrench://sessions/{sessionId}/messages.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/messages"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
