package driven

import "github.com/custodia-labs/pipewrench/internal/core/domain"

// AIConfigValidator probes a provider with the given settings before
// they are relied on. A provider left unconfigured is not an error.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
	ValidateVectorIndex(config *domain.VectorIndexSettings) error
}
