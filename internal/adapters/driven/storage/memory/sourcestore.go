package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore keeps the source catalogue in a map keyed by Source.Key.
// StructuredData is copied on the way in and out so callers never share
// a map with the store.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
	now     func() time.Time
}

func NewSourceStore() *SourceStore {
	return &SourceStore{
		sources: map[string]domain.Source{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts source. The first CreatedAt seen for a key is kept.
func (s *SourceStore) Save(ctx context.Context, source domain.Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := source.Key()
	if prev, ok := s.sources[key]; ok && !prev.CreatedAt.IsZero() {
		source.CreatedAt = prev.CreatedAt
	}
	ts := s.now()
	source.CreatedAt = cmp.Or(source.CreatedAt, ts)
	source.UpdatedAt = cmp.Or(source.UpdatedAt, ts)
	source.StructuredData = maps.Clone(source.StructuredData)
	s.sources[key] = source
	return nil
}

func (s *SourceStore) Get(ctx context.Context, kind domain.SourceKind, id string) (*domain.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	source, ok := s.sources[domain.SourceKey(kind, id)]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	source.StructuredData = maps.Clone(source.StructuredData)
	return &source, nil
}

func (s *SourceStore) Delete(ctx context.Context, kind domain.SourceKind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sources, domain.SourceKey(kind, id))
	s.mu.Unlock()
	return nil
}

// List orders by kind, then id.
func (s *SourceStore) List(ctx context.Context) ([]domain.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := slices.AppendSeq(make([]domain.Source, 0, len(s.sources)), maps.Values(s.sources))
	s.mu.RUnlock()

	for i := range out {
		out[i].StructuredData = maps.Clone(out[i].StructuredData)
	}
	slices.SortFunc(out, func(a, b domain.Source) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}
