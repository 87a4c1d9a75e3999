package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// defaultOllamaURL is used when a local provider has no base URL yet.
const defaultOllamaURL = "http://localhost:11434"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyVectorBackend   = "vector_index.backend"
	keyVectorHost      = "vector_index.host"
	keyVectorAPIKey    = "vector_index.api_key"
	keyVectorNamespace = "vector_index.namespace"
	keyVectorDims      = "vector_index.dimensions"
	keyVectorRPS       = "vector_index.requests_per_second"
	keyChunkSize       = "chunker.size"
	keyChunkOverlap    = "chunker.overlap"
	keyChatTopK        = "chat.top_k"
	keyChatHistory     = "chat.history_limit"
	keyChatMaxTokens   = "chat.max_tokens"
	keyChatTemperature = "chat.temperature"
	keyChatEmbedTO     = "chat.embed_timeout"
	keyChatGenerateTO  = "chat.generate_timeout"
	keyChatStrict      = "chat.strict_retrieval"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get reads settings, falling back to defaults key by key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()
	c := configValues{store: s.configStore}

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: aiProvider(c.string(keyEmbedProvider, ""), d.Embedding.Provider),
			Model:    c.string(keyEmbedModel, d.Embedding.Model),
			BaseURL:  c.string(keyEmbedBaseURL, ""),
			APIKey:   c.string(keyEmbedAPIKey, ""),
		},
		LLM: domain.LLMSettings{
			Provider: aiProvider(c.string(keyLLMProvider, ""), d.LLM.Provider),
			Model:    c.string(keyLLMModel, d.LLM.Model),
			BaseURL:  c.string(keyLLMBaseURL, ""),
			APIKey:   c.string(keyLLMAPIKey, ""),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:           validOr(domain.VectorBackend(c.string(keyVectorBackend, "")), d.VectorIndex.Backend),
			Host:              c.string(keyVectorHost, ""),
			APIKey:            c.string(keyVectorAPIKey, ""),
			Namespace:         c.string(keyVectorNamespace, ""),
			Dimensions:        c.positiveInt(keyVectorDims, d.VectorIndex.Dimensions),
			RequestsPerSecond: c.float(keyVectorRPS, d.VectorIndex.RequestsPerSecond),
		},
		Chunker: domain.ChunkerSettings{
			Size:    c.positiveInt(keyChunkSize, d.Chunker.Size),
			Overlap: c.positiveInt(keyChunkOverlap, d.Chunker.Overlap),
		},
		Chat: domain.ChatSettings{
			TopK:            c.positiveInt(keyChatTopK, d.Chat.TopK),
			HistoryLimit:    c.positiveInt(keyChatHistory, d.Chat.HistoryLimit),
			MaxTokens:       c.positiveInt(keyChatMaxTokens, d.Chat.MaxTokens),
			Temperature:     c.float(keyChatTemperature, d.Chat.Temperature),
			EmbedTimeout:    c.duration(keyChatEmbedTO, d.Chat.EmbedTimeout),
			GenerateTimeout: c.duration(keyChatGenerateTO, d.Chat.GenerateTimeout),
			StrictRetrieval: c.bool(keyChatStrict, d.Chat.StrictRetrieval),
		},
		Storage: domain.StorageSettings{
			Backend: validOr(domain.StorageBackend(c.string(keyStorageBackend, "")), d.Storage.Backend),
			DataDir: c.string(keyStorageDataDir, ""),
		},
	}, nil
}

// Save writes every setting in one update. Empty API keys leave stored
// keys untouched so a wizard run without re-entering them keeps them.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedProvider:   settings.Embedding.Provider.String(),
		keyEmbedModel:      settings.Embedding.Model,
		keyEmbedBaseURL:    settings.Embedding.BaseURL,
		keyLLMProvider:     settings.LLM.Provider.String(),
		keyLLMModel:        settings.LLM.Model,
		keyLLMBaseURL:      settings.LLM.BaseURL,
		keyVectorBackend:   settings.VectorIndex.Backend.String(),
		keyVectorHost:      settings.VectorIndex.Host,
		keyVectorNamespace: settings.VectorIndex.Namespace,
		keyVectorDims:      settings.VectorIndex.Dimensions,
		keyVectorRPS:       settings.VectorIndex.RequestsPerSecond,
		keyChunkSize:       settings.Chunker.Size,
		keyChunkOverlap:    settings.Chunker.Overlap,
		keyChatTopK:        settings.Chat.TopK,
		keyChatHistory:     settings.Chat.HistoryLimit,
		keyChatMaxTokens:   settings.Chat.MaxTokens,
		keyChatTemperature: settings.Chat.Temperature,
		keyChatEmbedTO:     settings.Chat.EmbedTimeout.String(),
		keyChatGenerateTO:  settings.Chat.GenerateTimeout.String(),
		keyChatStrict:      settings.Chat.StrictRetrieval,
		keyStorageBackend:  settings.Storage.Backend.String(),
		keyStorageDataDir:  settings.Storage.DataDir,
	}
	for key, secret := range map[string]string{
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyVectorAPIKey: settings.VectorIndex.APIKey,
	} {
		if secret != "" {
			values[key] = secret
		}
	}

	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("saving settings to %s: %w", s.configStore.Path(), err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// The vector dimensions follow the model when the model is known.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch {
	case provider == domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	default:
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.VectorIndex.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support chat", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend configures the vector index backend.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend, host, apiKey string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: invalid vector backend: %s", domain.ErrInvalidInput, backend)
	}
	if backend == domain.VectorBackendPinecone && (host == "" || apiKey == "") {
		return fmt.Errorf("%w: pinecone requires an index host and API key", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.VectorIndex.Backend = backend
	settings.VectorIndex.Host = host
	settings.VectorIndex.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can drive indexing and chat.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrConfiguration, settings.Embedding.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateVectorIndexConfig validates the current vector index configuration.
func (s *SettingsService) ValidateVectorIndexConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateVectorIndex(&settings.VectorIndex)
}

func aiProvider(value string, def domain.AIProvider) domain.AIProvider {
	return validOr(domain.AIProvider(value), def)
}

// validOr returns v when it names a known option, otherwise def.
func validOr[T interface{ IsValid() bool }](v, def T) T {
	if v.IsValid() {
		return v
	}
	return def
}
