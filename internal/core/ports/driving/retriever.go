package driving

import (
	"context"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// RetrieverService indexes sources and answers similarity queries.
type RetrieverService interface {
	// IndexSource chunks, embeds and upserts a source, then records it in
	// the catalogue. A source already catalogued is replaced: no chunk of the
	// previous run survives. Returns the number of chunks written.
	IndexSource(ctx context.Context, source domain.Source) (int, error)

	// ReindexSource replaces a catalogued source the way IndexSource does and
	// reports domain.ErrNotFound for an unknown one.
	ReindexSource(ctx context.Context, source domain.Source) (int, error)

	// ReindexAll clears the vector index and re-indexes every catalogued source.
	ReindexAll(ctx context.Context) (*ReindexReport, error)

	// IndexFile indexes an uploaded file for file-scoped chat.
	IndexFile(ctx context.Context, fileID, filename, content string) (int, error)

	// RemoveSource deletes a source's records and its catalogue entry.
	RemoveSource(ctx context.Context, kind domain.SourceKind, id string) error

	// Search embeds the query and returns the most similar chunks.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// ListSources returns every catalogued source.
	ListSources(ctx context.Context) ([]domain.Source, error)
}

// ReindexReport summarises a full reindex.
type ReindexReport struct {
	// Sources is the number of sources re-indexed successfully.
	Sources int `json:"sources"`

	// Chunks is the total number of chunks written.
	Chunks int `json:"chunks"`

	// Failed lists the keys of sources that could not be re-indexed.
	Failed []string `json:"failed,omitempty"`
}
