// Package ai turns provider settings into embedding, LLM and vector index
// adapters, and checks that they answer before the app relies on them.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	hashingembed "github.com/custodia-labs/pipewrench/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/pipewrench/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pipewrench/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/pipewrench/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/pipewrench/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pipewrench/internal/adapters/driven/llm/openai"
	memoryvector "github.com/custodia-labs/pipewrench/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/pipewrench/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

const fixHint = "Run 'pipewrench settings' to fix"

// InitResult holds the services built by Initialise.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	// Warnings are problems that leave the app usable, such as an
	// unreachable LLM.
	Warnings []string
}

// Close closes whichever services were built.
func (r *InitResult) Close() error {
	var errs []error
	for _, c := range []interface{ Close() error }{r.EmbeddingService, r.VectorIndex, r.LLMService} {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Initialise builds every AI-facing service from settings.
//
// Embeddings and the vector index are required, and the embedding size
// must match a configured index size. A missing or unreachable LLM only
// adds a warning: chat then answers with the fallback text.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	embedding, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedding == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured. %s", domain.ErrEmbeddingUnavailable, fixHint)
	}
	result := &InitResult{EmbeddingService: embedding}

	if want, got := settings.VectorIndex.Dimensions, embedding.Dimensions(); want > 0 && want != got {
		_ = result.Close()
		return nil, fmt.Errorf("%w: embedding model %s produces %d dimensions but the vector index expects %d",
			domain.ErrConfiguration, embedding.ModelName(), got, want)
	}

	if result.VectorIndex, err = CreateVectorIndex(&settings.VectorIndex); err != nil {
		_ = result.Close()
		return nil, err
	}

	switch llm, err := CreateAndValidateLLMService(&settings.LLM); {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil:
		result.Warnings = append(result.Warnings, "no LLM provider configured; chat will return fallback answers")
	default:
		result.LLMService = llm
	}
	return result, nil
}

// CreateAndValidateEmbeddingService builds the embedding service and pings
// it. Unconfigured settings give (nil, nil).
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	return connect(svc, err, domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService builds the LLM service and pings it.
// Unconfigured settings give (nil, nil).
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	return connect(svc, err, domain.ErrLLMUnavailable)
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// connect pings a freshly built service. Failures are wrapped in sentinel
// and the service is closed.
func connect[S pingCloser](svc S, err error, sentinel error) (S, error) {
	var zero S
	if err != nil {
		return zero, fmt.Errorf("%w: %w. %s", sentinel, err, fixHint)
	}
	if any(svc) == nil {
		return zero, nil
	}
	if err := withTimeout(pingTimeout, svc.Ping); err != nil {
		_ = svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w). %s", sentinel, err, fixHint)
	}
	return svc, nil
}

// CreateEmbeddingService returns nil, nil when settings are not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	dims := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderLocal:
		return hashingembed.NewEmbeddingService(hashingembed.Config{Dimensions: dims}), nil
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		}), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})
	case domain.AIProviderAnthropic:
		return nil, errors.New("anthropic does not support embeddings, use local, ollama or openai")
	}
	return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
}

// CreateLLMService returns nil, nil when settings are not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: settings.BaseURL, Model: settings.Model}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderLocal:
		return nil, errors.New("the local provider only supports embeddings, use ollama, openai or anthropic")
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
}

// CreateVectorIndex picks the index backend; an empty backend means memory.
func CreateVectorIndex(settings *domain.VectorIndexSettings) (driven.VectorIndex, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: vector index settings missing", domain.ErrConfiguration)
	}

	switch settings.Backend {
	case domain.VectorBackendMemory, "":
		return memoryvector.NewIndex(), nil
	case domain.VectorBackendPinecone:
		idx, err := pinecone.NewIndex(pinecone.Config{
			Host:              settings.Host,
			APIKey:            settings.APIKey,
			Namespace:         settings.Namespace,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	}
	return nil, fmt.Errorf("%w: unsupported vector backend: %s", domain.ErrConfiguration, settings.Backend)
}
