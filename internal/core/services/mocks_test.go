package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	err       error
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return len(m.embedding) }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	matches   []domain.VectorMatch
	queryErr  error
	upsertErr error
	deleteErr error

	upserted   []domain.VectorRecord
	deleted    []string
	lastFilter domain.MetadataFilter
	lastTopK   int
}

func (m *mockVectorIndex) Upsert(_ context.Context, record domain.VectorRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, record)
	return nil
}

func (m *mockVectorIndex) Query(
	_ context.Context, _ []float32, topK int, filter domain.MetadataFilter,
) ([]domain.VectorMatch, error) {
	m.lastTopK = topK
	m.lastFilter = filter
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.matches, nil
}

func (m *mockVectorIndex) Delete(_ context.Context, ids ...string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, ids...)
	return nil
}

func (m *mockVectorIndex) DeleteAll(_ context.Context) error    { return m.deleteErr }
func (m *mockVectorIndex) Count(_ context.Context) (int, error) { return len(m.upserted), nil }
func (m *mockVectorIndex) Close() error                         { return nil }

// mockLLMService implements driven.LLMService and records prompts.
type mockLLMService struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []driven.Prompt
}

func (m *mockLLMService) Answer(_ context.Context, prompt driven.Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

func (m *mockLLMService) last() driven.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return driven.Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLMService) lastUserPrompt() string   { return m.last().User }
func (m *mockLLMService) lastSystemPrompt() string { return m.last().System }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockRetriever implements driving.RetrieverService search for chat tests.
type mockRetriever struct {
	RetrieverService
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockRetriever) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// failingSessionStore fails AppendMessage while delegating everything else.
type failingSessionStore struct {
	driven.SessionStore
	appendErr error
}

func (f *failingSessionStore) AppendMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	return f.SessionStore.AppendMessage(ctx, msg)
}
