package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid messages URI", uri: "pipewrench://sessions/abc-123/messages", expected: "abc-123"},
		{name: "invalid prefix", uri: "file://sessions/abc-123/messages", expected: ""},
		{name: "missing messages suffix", uri: "pipewrench://sessions/abc-123", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionID(tt.uri))
		})
	}
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists catalogue", func(t *testing.T) {
		retriever := &mockRetriever{sources: []domain.Source{
			{Kind: domain.SourceKindDocument, ID: "1", Title: "Runbook", ChunkCount: 4},
			{Kind: domain.SourceKindReport, ID: "7", ChunkCount: 2},
		}}
		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, readRequest("pipewrench://sources"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var infos []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "Runbook", infos[0]["title"])
		assert.Equal(t, "Knowledge Report 7", infos[1]["title"])
		assert.InDelta(t, 4, infos[0]["chunks"], 0)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{err: errors.New("db down")}})
		require.NoError(t, err)

		_, err = server.handleSourcesResource(ctx, readRequest("pipewrench://sources"))
		assert.ErrorContains(t, err, "db down")
	})
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("without session service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, readRequest("pipewrench://sessions"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists sessions of the configured user", func(t *testing.T) {
		sessions := &mockSessionService{sessions: []domain.ChatSession{{
			ID:        "s1",
			Title:     "Key rotation",
			UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}}}
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Sessions: sessions, UserID: "alice"})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, readRequest("pipewrench://sessions"))
		require.NoError(t, err)

		assert.Equal(t, "alice", sessions.lastUser)
		assert.Contains(t, result.Contents[0].Text, `"uri": "pipewrench://sessions/s1/messages"`)
		assert.Contains(t, result.Contents[0].Text, `"updated_at": "2026-03-01T12:00:00Z"`)
	})
}

func TestServer_handleMessagesResource(t *testing.T) {
	ctx := context.Background()
	uri := "pipewrench://sessions/s1/messages"

	t.Run("returns transcript", func(t *testing.T) {
		sessions := &mockSessionService{messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "how?"},
			{Role: domain.RoleAssistant, Content: "like this", Citations: []domain.Citation{{Source: "Doc (Chunk 1)"}}},
		}}
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Sessions: sessions})
		require.NoError(t, err)

		result, err := server.handleMessagesResource(ctx, readRequest(uri))
		require.NoError(t, err)

		var infos []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "user", infos[0]["role"])
		assert.NotContains(t, infos[0], "sources")
		assert.Contains(t, infos[1], "sources")
		assert.Equal(t, defaultUserID, sessions.lastUser)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		sessions := &mockSessionService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Sessions: sessions})
		require.NoError(t, err)

		_, err = server.handleMessagesResource(ctx, readRequest(uri))
		assert.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Sessions: &mockSessionService{}})
		require.NoError(t, err)

		_, err = server.handleMessagesResource(ctx, readRequest("pipewrench://sessions/s1"))
		assert.Error(t, err)
	})

	t.Run("without session service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
		require.NoError(t, err)

		_, err = server.handleMessagesResource(ctx, readRequest(uri))
		assert.Error(t, err)
	})
}
