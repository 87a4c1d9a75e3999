package driving

import "github.com/custodia-labs/pipewrench/internal/core/domain"

// SettingsService reads and writes the persisted provider configuration.
// The Set* helpers change one section and save straight away.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	GetDefaults() domain.AppSettings
	Save(settings *domain.AppSettings) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
	SetVectorBackend(backend domain.VectorBackend, host, apiKey string) error

	// Validate checks the saved settings without contacting any provider.
	Validate() error

	// The Validate*Config methods build the configured client and ping it.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
	ValidateVectorIndexConfig() error
}
