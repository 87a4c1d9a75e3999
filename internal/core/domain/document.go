package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Well-known vector record metadata keys.
// Both vector index variants store and filter on these keys.
const (
	// MetaSourceKind holds the SourceKind of the originating source.
	MetaSourceKind = "source_kind"

	// MetaSourceID holds the id of the originating source.
	MetaSourceID = "source_id"

	// MetaChunkIndex holds the zero-based chunk ordinal.
	MetaChunkIndex = "chunk_index"

	// MetaContent holds the raw chunk text.
	MetaContent = "content"

	// MetaSource holds the human-readable citation label.
	MetaSource = "source"

	// MetaTitle holds the source title.
	MetaTitle = "title"
)

// Chunk is a contiguous word-window slice of a source.
// Chunks are immutable once stored; reindexing replaces them.
type Chunk struct {
	// SourceKind is the kind of the parent source.
	SourceKind SourceKind

	// SourceID links to the parent source.
	SourceID string

	// Ordinal is the zero-based position within the source.
	Ordinal int

	// Content is the text content of this chunk.
	Content string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// RecordID returns the deterministic vector record id of the chunk.
func (c *Chunk) RecordID() string {
	return RecordID(c.SourceKind, c.SourceID, c.Ordinal)
}

// RecordID builds the vector record id for a source chunk.
// Indexing the same chunk twice yields the same id, so the second write overwrites the first.
func RecordID(kind SourceKind, sourceID string, ordinal int) string {
	return fmt.Sprintf("%s_%s_chunk_%d", kind, sourceID, ordinal)
}

// CitationLabel builds the human-readable label for a chunk of a titled source.
func CitationLabel(title string, ordinal int) string {
	return fmt.Sprintf("%s (Chunk %d)", title, ordinal+1)
}

// Metadata is the key/value payload stored alongside a vector.
type Metadata map[string]any

// String returns the string value stored under key, or "" if absent or not a string.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Int returns the integer value stored under key.
// JSON round trips turn integers into float64, so both are accepted.
func (m Metadata) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	default:
		return 0
	}
}

// VectorRecord is an embedded chunk as stored in a vector index.
type VectorRecord struct {
	// ID is the deterministic record id (see RecordID).
	ID string

	// Vector is the embedding.
	Vector []float32

	// Metadata carries the citation and filter fields.
	Metadata Metadata
}

// NewVectorRecord builds the record for an embedded chunk of the given source.
func NewVectorRecord(src *Source, chunk *Chunk) VectorRecord {
	title := src.DisplayTitle()
	return VectorRecord{
		ID:     chunk.RecordID(),
		Vector: chunk.Embedding,
		Metadata: Metadata{
			MetaSourceKind: string(chunk.SourceKind),
			MetaSourceID:   chunk.SourceID,
			MetaChunkIndex: chunk.Ordinal,
			MetaContent:    chunk.Content,
			MetaSource:     CitationLabel(title, chunk.Ordinal),
			MetaTitle:      title,
		},
	}
}

// MetadataFilter is an exact-match predicate over metadata values.
// A record matches when every key in the filter holds an equal string value.
// A nil or empty filter matches every record.
type MetadataFilter map[string]string

// Matches reports whether the metadata satisfies the filter.
func (f MetadataFilter) Matches(m Metadata) bool {
	for key, want := range f {
		if m.String(key) != want {
			return false
		}
	}
	return true
}

// FileFilter restricts a query to the chunks of one uploaded file.
func FileFilter(fileID string) MetadataFilter {
	return MetadataFilter{
		MetaSourceKind: string(SourceKindFlatFile),
		MetaSourceID:   fileID,
	}
}

// VectorMatch is a single similarity search hit.
type VectorMatch struct {
	// ID is the matched record id.
	ID string

	// Score is the cosine similarity between the query and the record.
	Score float64

	// Metadata is the stored record metadata.
	Metadata Metadata
}

// NormalisedText is the plain text extracted from a file before indexing.
type NormalisedText struct {
	// Title is taken from the document itself or derived from the file name.
	Title string

	// Content is the text with formatting markup removed.
	Content string

	// Format names the normaliser that produced the text, e.g. "markdown".
	Format string
}

// TitleFromFileName derives a readable title from a file name:
// the extension is dropped and underscores and dashes become spaces.
func TitleFromFileName(name string) string {
	filename := filepath.Base(name)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
