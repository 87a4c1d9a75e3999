package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds a throwaway service from candidate settings and
// pings it, so bad keys or hosts are caught when settings are saved.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption tunes a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout bounds each probe. The default is pingTimeout.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding returns nil when no provider is configured.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	if err := v.probe(svc.Ping); err != nil {
		return fmt.Errorf("embedding %s/%s: %w", config.Provider, svc.ModelName(), err)
	}
	return nil
}

// ValidateLLM returns nil when no provider is configured.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	if err := v.probe(svc.Ping); err != nil {
		return fmt.Errorf("llm %s/%s: %w", config.Provider, svc.ModelName(), err)
	}
	return nil
}

// ValidateVectorIndex opens the index and counts its records.
func (v *ConfigValidator) ValidateVectorIndex(config *domain.VectorIndexSettings) error {
	idx, err := CreateVectorIndex(config)
	if err != nil {
		return err
	}
	defer idx.Close()
	return v.probe(func(ctx context.Context) error {
		if _, err := idx.Count(ctx); err != nil {
			return fmt.Errorf("vector index %s: %w", config.Backend, err)
		}
		return nil
	})
}

func (v *ConfigValidator) probe(fn func(context.Context) error) error {
	return withTimeout(v.timeout, fn)
}

func withTimeout(d time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return fn(ctx)
}
