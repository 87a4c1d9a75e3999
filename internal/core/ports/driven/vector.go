package driven

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// VectorIndex stores embedded chunks and answers similarity queries.
// Two implementations exist: a managed Pinecone index and an in-process
// linear scan. Both honour the same exact-match metadata filter.
type VectorIndex interface {
	// Upsert inserts or replaces the record with the same id.
	Upsert(ctx context.Context, record domain.VectorRecord) error

	// Query returns up to topK records most similar to vector that satisfy
	// filter, highest score first. A nil filter matches every record.
	Query(ctx context.Context, vector []float32, topK int, filter domain.MetadataFilter) ([]domain.VectorMatch, error)

	// Delete removes the records with the given ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids ...string) error

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
