// Package memory provides an in-process vector index.
//
// Queries are answered by a linear scan over every stored record, which
// keeps results exact and is adequate for single-process deployments with
// up to tens of thousands of chunks. Records do not survive a restart;
// run a full reindex after startup to repopulate.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a thread-safe in-memory vector index.
// Readers share the lock; upserts and deletes take it exclusively.
type Index struct {
	mu      sync.RWMutex
	records map[string]domain.VectorRecord
}

// NewIndex creates an empty in-memory vector index.
func NewIndex() *Index {
	return &Index{
		records: make(map[string]domain.VectorRecord),
	}
}

// Upsert inserts or replaces the record with the same id.
func (i *Index) Upsert(_ context.Context, record domain.VectorRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.records[record.ID] = domain.VectorRecord{
		ID:       record.ID,
		Vector:   slices.Clone(record.Vector),
		Metadata: cloneMetadata(record.Metadata),
	}
	return nil
}

// Query scores every record matching filter and returns the topK best,
// highest score first. Equal scores are ordered by record id.
func (i *Index) Query(
	ctx context.Context,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.VectorMatch, error) {
	if topK <= 0 {
		return []domain.VectorMatch{}, nil
	}

	i.mu.RLock()
	matches := make([]domain.VectorMatch, 0, len(i.records))
	for id, rec := range i.records {
		if !filter.Matches(rec.Metadata) {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ID:       id,
			Score:    domain.CosineSimilarity(vector, rec.Vector),
			Metadata: cloneMetadata(rec.Metadata),
		})
	}
	i.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b domain.VectorMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes the records with the given ids.
func (i *Index) Delete(_ context.Context, ids ...string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, id := range ids {
		delete(i.records, id)
	}
	return nil
}

// DeleteAll removes every record.
func (i *Index) DeleteAll(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.records = make(map[string]domain.VectorRecord)
	return nil
}

// Count returns the number of stored records.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.records), nil
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

func cloneMetadata(m domain.Metadata) domain.Metadata {
	if m == nil {
		return nil
	}
	out := make(domain.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
