package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider names a service that produces embeddings, completions or both.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	// AIProviderLocal is the built-in offline hashing embedder.
	AIProviderLocal AIProvider = "local"
)

// providerInfo describes one provider. An empty default model means the
// provider does not offer that capability.
type providerInfo struct {
	id             AIProvider
	description    string
	needsKey       bool
	local          bool
	embeddingModel string
	llmModel       string
}

// providerCatalog is ordered as the settings menus list providers.
var providerCatalog = []providerInfo{
	{id: AIProviderLocal, description: "Built-in hashing (offline)", local: true, embeddingModel: "hashing-384"},
	{id: AIProviderOllama, description: "Ollama (local)", local: true, embeddingModel: "nomic-embed-text", llmModel: "llama3.2"},
	{id: AIProviderOpenAI, description: "OpenAI (cloud)", needsKey: true, embeddingModel: "text-embedding-3-small", llmModel: "gpt-4o-mini"},
	{id: AIProviderAnthropic, description: "Anthropic (cloud)", needsKey: true, llmModel: "claude-3-5-sonnet-latest"},
}

func (p AIProvider) info() (providerInfo, bool) {
	for _, info := range providerCatalog {
		if info.id == p {
			return info, true
		}
	}
	return providerInfo{}, false
}

func (p AIProvider) IsValid() bool {
	_, ok := p.info()
	return ok
}

func (p AIProvider) RequiresAPIKey() bool {
	info, _ := p.info()
	return info.needsKey
}

// IsLocal reports whether the provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	info, _ := p.info()
	return info.local
}

func (p AIProvider) String() string { return string(p) }

func (p AIProvider) Description() string {
	if info, ok := p.info(); ok {
		return info.description
	}
	return unknownDescription
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory is the in-process linear-scan index.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendPinecone is the managed Pinecone index.
	VectorBackendPinecone VectorBackend = "pinecone"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMemory || b == VectorBackendPinecone
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMemory:
		return "In-memory (single process, not persistent)"
	case VectorBackendPinecone:
		return "Pinecone (managed)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where sessions and the source catalogue live.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSQLite persists to a SQLite file in the data directory.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendMemory keeps everything in process memory.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendSQLite || b == StorageBackendMemory
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// EmbeddingSettings choose how chunks and queries are embedded.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	// BaseURL overrides the provider endpoint, e.g. a remote Ollama.
	BaseURL string
	APIKey  string
}

// IsConfigured reports whether a known provider is chosen and has the key
// it needs. The AI factory rejects providers that cannot embed.
func (e EmbeddingSettings) IsConfigured() bool {
	return providerReady(e.Provider, e.APIKey)
}

// LLMSettings choose the model that writes chat answers.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

func (l LLMSettings) IsConfigured() bool {
	return providerReady(l.Provider, l.APIKey)
}

func providerReady(p AIProvider, apiKey string) bool {
	return p.IsValid() && (!p.RequiresAPIKey() || apiKey != "")
}

// VectorIndexSettings choose and address the vector index.
type VectorIndexSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// Host is the Pinecone index host, e.g. "https://kb-abc123.svc.pinecone.io".
	Host string

	// APIKey authenticates against Pinecone.
	APIKey string

	// Namespace partitions records within the Pinecone index.
	Namespace string

	// Dimensions is the embedding vector size.
	Dimensions int

	// RequestsPerSecond caps Pinecone data-plane calls. Zero selects the
	// adapter default; a negative value disables limiting.
	RequestsPerSecond float64
}

// ChunkerSettings holds text chunking configuration. Sizes are in words.
type ChunkerSettings struct {
	// Size is the number of words per chunk.
	Size int

	// Overlap is the number of words shared by consecutive chunks.
	Overlap int
}

// ChatSettings holds chat orchestration configuration.
type ChatSettings struct {
	// TopK is the number of chunks retrieved per turn.
	TopK int

	// HistoryLimit is the number of prior messages included in the prompt.
	// Zero selects DefaultHistoryLimit.
	HistoryLimit int

	// MaxTokens bounds the generated answer.
	MaxTokens int

	// Temperature controls generation randomness.
	Temperature float64

	// EmbedTimeout bounds each embedding call.
	EmbedTimeout time.Duration

	// GenerateTimeout bounds each generation call.
	GenerateTimeout time.Duration

	// StrictRetrieval fails the turn on retrieval errors instead of
	// answering without context.
	StrictRetrieval bool
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend selects the session/catalogue store.
	Backend StorageBackend

	// DataDir holds the SQLite database and prompt templates.
	DataDir string
}

// AppSettings is everything persisted in config.toml.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorIndex VectorIndexSettings
	Chunker     ChunkerSettings
	Chat        ChatSettings
	Storage     StorageSettings
}

// Default values used by DefaultAppSettings.
const (
	DefaultChunkSize       = 512
	DefaultChunkOverlap    = 50
	DefaultHistoryLimit    = 6
	DefaultMaxTokens       = 1000
	DefaultTemperature     = 0.7
	DefaultEmbedTimeout    = 30 * time.Second
	DefaultGenerateTimeout = 120 * time.Second
)

// DefaultAppSettings run fully offline: local hashing embeddings, an in-memory
// index and SQLite storage. The LLM is left unconfigured until the user
// picks a provider.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
		},
		VectorIndex: VectorIndexSettings{
			Backend:           VectorBackendMemory,
			Dimensions:        EmbeddingDimensions()[DefaultEmbeddingModels()[AIProviderLocal]],
			RequestsPerSecond: 10,
		},
		Chunker: ChunkerSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Chat: ChatSettings{
			TopK:            DefaultTopK,
			HistoryLimit:    DefaultHistoryLimit,
			MaxTokens:       DefaultMaxTokens,
			Temperature:     DefaultTemperature,
			EmbedTimeout:    DefaultEmbedTimeout,
			GenerateTimeout: DefaultGenerateTimeout,
		},
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
	}
}

// Validate checks settings that would make indexing or chat misbehave.
// Provider readiness is checked separately by the AI factory.
func (s AppSettings) Validate() error {
	if s.Chunker.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, s.Chunker.Size)
	}
	if s.Chunker.Overlap < 0 || s.Chunker.Overlap >= s.Chunker.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrConfiguration, s.Chunker.Size, s.Chunker.Overlap)
	}
	if s.Chat.TopK <= 0 {
		return fmt.Errorf("%w: chat top-k must be positive, got %d", ErrConfiguration, s.Chat.TopK)
	}
	if s.Chat.HistoryLimit < 0 {
		return fmt.Errorf("%w: history limit must not be negative", ErrConfiguration)
	}
	if !s.VectorIndex.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector backend %q", ErrConfiguration, s.VectorIndex.Backend)
	}
	if s.VectorIndex.Backend == VectorBackendPinecone {
		if s.VectorIndex.Host == "" || s.VectorIndex.APIKey == "" {
			return fmt.Errorf("%w: pinecone backend requires host and api key", ErrConfiguration)
		}
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrConfiguration, s.Storage.Backend)
	}
	return nil
}

// AllEmbeddingProviders lists the providers that can embed text.
func AllEmbeddingProviders() []AIProvider {
	return catalogIDs(func(info providerInfo) string { return info.embeddingModel })
}

// AllLLMProviders lists the providers that can generate answers.
func AllLLMProviders() []AIProvider {
	return catalogIDs(func(info providerInfo) string { return info.llmModel })
}

func AllVectorBackends() []VectorBackend {
	return []VectorBackend{VectorBackendMemory, VectorBackendPinecone}
}

func DefaultEmbeddingModels() map[AIProvider]string {
	return catalogModels(func(info providerInfo) string { return info.embeddingModel })
}

func DefaultLLMModels() map[AIProvider]string {
	return catalogModels(func(info providerInfo) string { return info.llmModel })
}

func catalogIDs(model func(providerInfo) string) []AIProvider {
	var ids []AIProvider
	for _, info := range providerCatalog {
		if model(info) != "" {
			ids = append(ids, info.id)
		}
	}
	return ids
}

func catalogModels(model func(providerInfo) string) map[AIProvider]string {
	models := map[AIProvider]string{}
	for _, info := range providerCatalog {
		if m := model(info); m != "" {
			models[info.id] = m
		}
	}
	return models
}

// EmbeddingDimensions maps known embedding models to their vector size.
// Unknown models are left to the adapter's default.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-384":            384,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
