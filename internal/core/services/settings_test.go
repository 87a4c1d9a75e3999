package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// failingConfigStore rejects any update that touches failOn.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Update(values map[string]any) error {
	if _, ok := values[f.failOn]; ok {
		return fmt.Errorf("writing %s: %w", f.failOn, assert.AnError)
	}
	return f.ConfigStore.Update(values)
}

// mockAIConfigValidator returns canned validation errors.
type mockAIConfigValidator struct {
	embedErr  error
	llmErr    error
	vectorErr error
}

func (m *mockAIConfigValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIConfigValidator) ValidateLLM(_ *domain.LLMSettings) error {
	return m.llmErr
}

func (m *mockAIConfigValidator) ValidateVectorIndex(_ *domain.VectorIndexSettings) error {
	return m.vectorErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":    "openai",
		"embedding.model":       "text-embedding-3-large",
		"vector_index.backend":  "pinecone",
		"vector_index.host":     "https://kb.svc.pinecone.io",
		"chunker.size":          200,
		"chat.temperature":      0.0,
		"chat.generate_timeout": "45s",
		"chat.strict_retrieval": true,
		"storage.backend":       "memory",
	})

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, domain.VectorBackendPinecone, settings.VectorIndex.Backend)
	assert.Equal(t, "https://kb.svc.pinecone.io", settings.VectorIndex.Host)
	assert.Equal(t, 200, settings.Chunker.Size)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Chunker.Overlap)
	assert.Zero(t, settings.Chat.Temperature, "explicit zero temperature is kept")
	assert.Equal(t, 45*time.Second, settings.Chat.GenerateTimeout)
	assert.True(t, settings.Chat.StrictRetrieval)
	assert.Equal(t, domain.StorageBackendMemory, settings.Storage.Backend)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"embedding.provider":   "invalid_provider",
		"vector_index.backend": "faiss",
		"chat.embed_timeout":   "soon",
		"storage.backend":      "postgres",
	})

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.VectorIndex.Backend, settings.VectorIndex.Backend)
	assert.Equal(t, defaults.Chat.EmbedTimeout, settings.Chat.EmbedTimeout)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic, Model: "claude-3-5-haiku-latest", APIKey: "sk-ant"}
	settings.VectorIndex.Namespace = "kb"
	settings.Chat.TopK = 8
	settings.Chat.EmbedTimeout = 10 * time.Second
	settings.Storage.DataDir = "/tmp/pw"

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_EmptyAPIKeyKeepsStored(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"llm.api_key": "existing",
	})
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	key, _ := store.Get("llm.api_key")
	assert.Equal(t, "existing", key)
}

func TestSettingsService_Save_PropagatesStoreErrors(t *testing.T) {
	for _, key := range []string{"embedding.provider", "chat.top_k", "storage.data_dir", "vector_index.api_key"} {
		t.Run(key, func(t *testing.T) {
			store := &failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: key}
			service := NewSettingsService(store, nil)

			settings := domain.DefaultAppSettings()
			settings.VectorIndex.APIKey = "pc-key"

			err := service.Save(&settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		wantModel   string
		wantBaseURL string
		wantDims    int
	}{
		{name: "ollama default model", provider: domain.AIProviderOllama, wantModel: "nomic-embed-text", wantBaseURL: defaultOllamaURL, wantDims: 768},
		{name: "openai", provider: domain.AIProviderOpenAI, model: "text-embedding-3-large", apiKey: "sk", wantModel: "text-embedding-3-large", wantDims: 3072},
		{name: "local", provider: domain.AIProviderLocal, wantModel: "hashing-384", wantDims: 384},
		{name: "unknown model keeps dims", provider: domain.AIProviderOllama, model: "custom-embed", wantModel: "custom-embed", wantBaseURL: defaultOllamaURL, wantDims: 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetEmbeddingProvider(tt.provider, tt.model, tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.Embedding.Provider)
			assert.Equal(t, tt.wantModel, settings.Embedding.Model)
			assert.Equal(t, tt.wantBaseURL, settings.Embedding.BaseURL)
			assert.Equal(t, tt.wantDims, settings.VectorIndex.Dimensions)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		provider domain.AIProvider
		apiKey   string
	}{
		{name: "invalid", provider: "bogus"},
		{name: "anthropic has no embeddings", provider: domain.AIProviderAnthropic, apiKey: "sk"},
		{name: "openai without key", provider: domain.AIProviderOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)
			err := service.SetEmbeddingProvider(tt.provider, "", tt.apiKey)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, defaultOllamaURL, settings.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Empty(t, settings.LLM.BaseURL)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
}

func TestSettingsService_SetLLMProvider_Rejects(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.ErrorIs(t, service.SetLLMProvider("bogus", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderLocal, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetVectorBackend(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.ErrorIs(t, service.SetVectorBackend("faiss", "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetVectorBackend(domain.VectorBackendPinecone, "https://h", ""), domain.ErrInvalidInput)

	require.NoError(t, service.SetVectorBackend(domain.VectorBackendPinecone, "https://h", "pc"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.VectorBackendPinecone, settings.VectorIndex.Backend)
	assert.Equal(t, "https://h", settings.VectorIndex.Host)
	assert.Equal(t, "pc", settings.VectorIndex.APIKey)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{name: "defaults"},
		{name: "overlap too large", values: map[string]any{"chunker.size": 50, "chunker.overlap": 50}, wantErr: true},
		{name: "pinecone without host", values: map[string]any{"vector_index.backend": "pinecone"}, wantErr: true},
		{name: "openai embeddings without key", values: map[string]any{"embedding.provider": "openai"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore(tt.values)

			err := NewSettingsService(store, nil).Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_ValidateProviders(t *testing.T) {
	store := memory.NewConfigStore()

	assert.NoError(t, NewSettingsService(store, nil).ValidateEmbeddingConfig())
	assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig())
	assert.NoError(t, NewSettingsService(store, nil).ValidateVectorIndexConfig())

	service := NewSettingsService(store, &mockAIConfigValidator{
		embedErr:  domain.ErrEmbeddingUnavailable,
		llmErr:    domain.ErrLLMUnavailable,
		vectorErr: domain.ErrVectorIndexUnavailable,
	})
	assert.ErrorIs(t, service.ValidateEmbeddingConfig(), domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, service.ValidateLLMConfig(), domain.ErrLLMUnavailable)
	assert.ErrorIs(t, service.ValidateVectorIndexConfig(), domain.ErrVectorIndexUnavailable)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
