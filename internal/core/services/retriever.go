package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driving"
	"github.com/custodia-labs/pipewrench/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrieverService = (*RetrieverService)(nil)

// embedBatchSize bounds the number of chunks sent per embedding request.
const embedBatchSize = 64

// RetrieverService owns the write path (chunk, embed, upsert) and the read
// path (embed query, similarity search) of the vector index.
type RetrieverService struct {
	embedding    driven.EmbeddingService
	vectorIndex  driven.VectorIndex
	sourceStore  driven.SourceStore
	chunker      driven.Chunker
	embedTimeout time.Duration
	now          func() time.Time
}

// NewRetrieverService creates a new retriever.
func NewRetrieverService(
	embedding driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	sourceStore driven.SourceStore,
	chunker driven.Chunker,
) *RetrieverService {
	return &RetrieverService{
		embedding:    embedding,
		vectorIndex:  vectorIndex,
		sourceStore:  sourceStore,
		chunker:      chunker,
		embedTimeout: domain.DefaultEmbedTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetEmbedTimeout bounds each embedding call. Non-positive values are ignored.
func (s *RetrieverService) SetEmbedTimeout(d time.Duration) {
	if d > 0 {
		s.embedTimeout = d
	}
}

// IndexSource chunks, embeds and upserts a source, then catalogues it.
//
// Indexing an id that is already catalogued replaces it: ordinals the new
// content no longer produces are deleted, and content that yields no chunks
// removes the source. If an upsert fails, every record of the source is
// deleted so the index never holds a mix of old and new chunks.
func (s *RetrieverService) IndexSource(ctx context.Context, source domain.Source) (int, error) {
	if err := source.Validate(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	previous := 0
	prev, err := s.sourceStore.Get(ctx, source.Kind, source.ID)
	switch {
	case err == nil:
		previous = prev.ChunkCount
		if source.CreatedAt.IsZero() {
			source.CreatedAt = prev.CreatedAt
		}
	case errors.Is(err, domain.ErrNotFound):
		prev = nil
	default:
		return 0, fmt.Errorf("load %s: %w", source.Key(), err)
	}

	logger.Section("Indexing " + source.Key())

	chunks, err := s.chunker.Process(ctx, &source)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", source.Key(), err)
	}
	if len(chunks) == 0 {
		logger.Info("No content to index for %s", source.Key())
		if prev == nil {
			return 0, nil
		}
		return 0, s.RemoveSource(ctx, source.Kind, source.ID)
	}
	logger.Debug("Chunks: %d (previously %d)", len(chunks), previous)

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		return 0, err
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		record := domain.NewVectorRecord(&source, &chunks[i])
		if err := s.vectorIndex.Upsert(ctx, record); err != nil {
			err = fmt.Errorf("%w: upsert %s: %w", domain.ErrRetrieval, record.ID, err)
			// The failed upsert may have landed, so its ordinal goes too
			return 0, errors.Join(err, s.rollback(ctx, &source, prev, max(i+1, previous)))
		}
	}

	if stale := staleRecordIDs(source.Kind, source.ID, len(chunks), previous); len(stale) > 0 {
		logger.Debug("Removing %d stale chunks of %s", len(stale), source.Key())
		if err := s.vectorIndex.Delete(ctx, stale...); err != nil {
			err = fmt.Errorf("%w: delete stale chunks of %s: %w", domain.ErrRetrieval, source.Key(), err)
			return 0, errors.Join(err, s.rollback(ctx, &source, prev, max(len(chunks), previous)))
		}
	}

	source.ChunkCount = len(chunks)
	source.UpdatedAt = s.now()
	if err := s.sourceStore.Save(ctx, source); err != nil {
		err = fmt.Errorf("catalogue %s: %w", source.Key(), err)
		return 0, errors.Join(err, s.rollback(ctx, &source, prev, max(len(chunks), previous)))
	}

	logger.Info("Indexed %s: %d chunks", source.Key(), len(chunks))
	return len(chunks), nil
}

// rollback deletes ordinals [0, upTo) of source. A catalogue entry from an
// earlier run keeps its content but records zero chunks, so a later reindex
// rebuilds it and RemoveSource has nothing left to delete.
func (s *RetrieverService) rollback(ctx context.Context, source, prev *domain.Source, upTo int) error {
	logger.Warn("Rolling back %d chunks of %s", upTo, source.Key())
	var errs []error
	if ids := staleRecordIDs(source.Kind, source.ID, 0, upTo); len(ids) > 0 {
		if err := s.vectorIndex.Delete(ctx, ids...); err != nil {
			errs = append(errs, fmt.Errorf("%w: roll back %s: %w", domain.ErrRetrieval, source.Key(), err))
		}
	}
	if prev != nil {
		cleared := *prev
		cleared.ChunkCount = 0
		cleared.UpdatedAt = s.now()
		if err := s.sourceStore.Save(ctx, cleared); err != nil {
			errs = append(errs, fmt.Errorf("catalogue %s: %w", source.Key(), err))
		}
	}
	return errors.Join(errs...)
}

// ReindexSource replaces a source that is already catalogued and reports
// domain.ErrNotFound for one that is not.
func (s *RetrieverService) ReindexSource(ctx context.Context, source domain.Source) (int, error) {
	if err := source.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.sourceStore.Get(ctx, source.Kind, source.ID); err != nil {
		return 0, err
	}
	return s.IndexSource(ctx, source)
}

// ReindexAll clears the vector index and re-indexes every catalogued source.
// Sources that fail are reported rather than aborting the run.
func (s *RetrieverService) ReindexAll(ctx context.Context) (*driving.ReindexReport, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	sources, err := s.sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	logger.Section("Reindex")
	logger.Debug("Sources: %d", len(sources))

	if err := s.vectorIndex.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("%w: clear index: %w", domain.ErrRetrieval, err)
	}

	report := &driving.ReindexReport{}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		n, err := s.IndexSource(ctx, source)
		if err != nil {
			logger.Warn("Reindex %s failed: %v", source.Key(), err)
			report.Failed = append(report.Failed, source.Key())
			continue
		}
		report.Sources++
		report.Chunks += n
	}

	logger.Info("Reindexed %d sources (%d chunks, %d failed)", report.Sources, report.Chunks, len(report.Failed))
	return report, nil
}

// IndexFile indexes the text of an uploaded file for file-scoped chat.
// Re-uploading the same file id replaces its previous chunks.
func (s *RetrieverService) IndexFile(ctx context.Context, fileID, filename, content string) (int, error) {
	return s.IndexSource(ctx, domain.Source{
		Kind:    domain.SourceKindFlatFile,
		ID:      fileID,
		Title:   filename,
		Content: content,
	})
}

// RemoveSource deletes a source's records and its catalogue entry.
func (s *RetrieverService) RemoveSource(ctx context.Context, kind domain.SourceKind, id string) error {
	source, err := s.sourceStore.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	if ids := staleRecordIDs(kind, id, 0, source.ChunkCount); len(ids) > 0 {
		if err := s.vectorIndex.Delete(ctx, ids...); err != nil {
			return fmt.Errorf("%w: delete chunks of %s: %w", domain.ErrRetrieval, source.Key(), err)
		}
	}

	return s.sourceStore.Delete(ctx, kind, id)
}

// Search embeds the query and returns the most similar chunks.
// Failures wrap domain.ErrRetrieval.
func (s *RetrieverService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, top-k: %d, file: %q", query, opts.Limit(), opts.FileID)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if err := s.ready(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	done := logger.Timed("Vector query")
	matches, err := s.vectorIndex.Query(ctx, vector, opts.Limit(), opts.Filter())
	done()
	if err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil, fmt.Errorf("%w: query index: %w", domain.ErrRetrieval, err)
	}

	results := make([]domain.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = domain.NewSearchResult(m)
		logger.Debug("  %.4f %s", m.Score, results[i].Source)
	}

	return results, nil
}

// ListSources returns every catalogued source.
func (s *RetrieverService) ListSources(ctx context.Context) ([]domain.Source, error) {
	return s.sourceStore.List(ctx)
}

func (s *RetrieverService) ready() error {
	switch {
	case s.embedding == nil:
		return domain.ErrEmbeddingUnavailable
	case s.vectorIndex == nil:
		return domain.ErrVectorIndexUnavailable
	}
	return nil
}

func (s *RetrieverService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	defer logger.Timed("Query embedding")()

	vector, err := s.embedding.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}
	return vector, nil
}

// embedAll embeds texts in bounded batches, each under its own timeout.
func (s *RetrieverService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		batch := texts[start:min(start+embedBatchSize, len(texts))]

		out, err := s.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, out...)
	}
	return vectors, nil
}

func (s *RetrieverService) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	out, err := s.embedding.EmbedBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: embed chunks: %w", domain.ErrRetrieval, err)
	}
	if len(out) != len(batch) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrRetrieval, len(out), len(batch))
	}
	return out, nil
}

// staleRecordIDs returns the record ids for ordinals [from, to).
func staleRecordIDs(kind domain.SourceKind, id string, from, to int) []string {
	if to <= from {
		return nil
	}
	ids := make([]string, 0, to-from)
	for ordinal := from; ordinal < to; ordinal++ {
		ids = append(ids, domain.RecordID(kind, id, ordinal))
	}
	return ids
}
