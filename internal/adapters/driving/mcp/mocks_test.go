package mcp

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

// mockRetriever is a mock implementation of driving.RetrieverService.
type mockRetriever struct {
	results  []domain.SearchResult
	sources  []domain.Source
	chunks   int
	err      error
	lastOpts domain.SearchOptions
	indexed  []string
}

func (m *mockRetriever) IndexSource(_ context.Context, _ domain.Source) (int, error) {
	return m.chunks, m.err
}

func (m *mockRetriever) ReindexSource(_ context.Context, _ domain.Source) (int, error) {
	return m.chunks, m.err
}

func (m *mockRetriever) ReindexAll(_ context.Context) (*driving.ReindexReport, error) {
	return &driving.ReindexReport{}, m.err
}

func (m *mockRetriever) IndexFile(_ context.Context, fileID, filename, _ string) (int, error) {
	m.indexed = append(m.indexed, fileID+"/"+filename)
	return m.chunks, m.err
}

func (m *mockRetriever) RemoveSource(_ context.Context, _ domain.SourceKind, _ string) error {
	return m.err
}

func (m *mockRetriever) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockRetriever) ListSources(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	response *domain.ChatResponse
	err      error
	lastReq  domain.ChatRequest
}

func (m *mockChatService) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.lastReq = req
	return m.response, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions []domain.ChatSession
	messages []domain.ChatMessage
	err      error
	lastUser string
}

func (m *mockSessionService) GetOrCreateSession(_ context.Context, sessionID, _ string) (string, error) {
	return sessionID, m.err
}

func (m *mockSessionService) ListSessions(_ context.Context, userID string) ([]domain.ChatSession, error) {
	m.lastUser = userID
	return m.sessions, m.err
}

func (m *mockSessionService) Transcript(_ context.Context, _, userID string) ([]domain.ChatMessage, error) {
	m.lastUser = userID
	return m.messages, m.err
}
