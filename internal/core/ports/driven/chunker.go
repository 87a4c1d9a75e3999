package driven

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// Chunker splits a source into ordered chunks ready for embedding.
type Chunker interface {
	// Process returns the chunks of src with ordinals starting at zero.
	Process(ctx context.Context, src *domain.Source) ([]domain.Chunk, error)
}
