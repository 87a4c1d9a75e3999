package domain

// DefaultTopK is the number of chunks retrieved per query when none is given.
const DefaultTopK = 5

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// TopK is the maximum number of results. Zero means DefaultTopK.
	TopK int

	// FileID restricts the query to the chunks of one uploaded file.
	FileID string
}

// Limit returns the effective result count.
func (o SearchOptions) Limit() int {
	if o.TopK <= 0 {
		return DefaultTopK
	}
	return o.TopK
}

// Filter returns the metadata filter implied by the options, or nil.
func (o SearchOptions) Filter() MetadataFilter {
	if o.FileID == "" {
		return nil
	}
	return FileFilter(o.FileID)
}

// SearchResult represents a single retrieved chunk.
type SearchResult struct {
	// RecordID is the vector record id of the matched chunk.
	RecordID string

	// Score is the cosine similarity to the query.
	Score float64

	// Content is the chunk text.
	Content string

	// Source is the citation label, e.g. "Runbook.pdf (Chunk 2)".
	Source string

	// Metadata is the full stored metadata.
	Metadata Metadata
}

// NewSearchResult maps a vector match onto a search result.
func NewSearchResult(m VectorMatch) SearchResult {
	return SearchResult{
		RecordID: m.ID,
		Score:    m.Score,
		Content:  m.Metadata.String(MetaContent),
		Source:   m.Metadata.String(MetaSource),
		Metadata: m.Metadata,
	}
}
