package driven

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// SourceStore catalogues the sources that have been indexed.
// The catalogue is what a full reindex rebuilds the vector index from.
type SourceStore interface {
	// Save stores or updates a source, keyed by kind and id.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, kind domain.SourceKind, id string) (*domain.Source, error)

	// Delete removes a source. Deleting an absent source is not an error.
	Delete(ctx context.Context, kind domain.SourceKind, id string) error

	// List returns all catalogued sources ordered by kind then id.
	List(ctx context.Context) ([]domain.Source, error)
}
