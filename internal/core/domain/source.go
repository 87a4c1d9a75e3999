package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies what kind of text a source holds.
// The value doubles as the prefix of every vector record id derived from the source.
type SourceKind string

// Available source kinds.
const (
	// SourceKindDocument is an uploaded organisational document.
	SourceKindDocument SourceKind = "doc"

	// SourceKindReport is an AI-generated knowledge report.
	SourceKindReport SourceKind = "report"

	// SourceKindFlatFile is an ad-hoc file uploaded for "chat with this file" mode.
	SourceKindFlatFile SourceKind = "flat_file"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindDocument, SourceKindReport, SourceKindFlatFile:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k SourceKind) Description() string {
	switch k {
	case SourceKindDocument:
		return "Document"
	case SourceKindReport:
		return "Knowledge Report"
	case SourceKindFlatFile:
		return "Uploaded File"
	default:
		return unknownDescription
	}
}

// ParseSourceKind converts user input into a SourceKind.
// Accepts the canonical values plus the long forms "document" and "file".
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "doc", "document":
		return SourceKindDocument, nil
	case "report", "knowledge_report":
		return SourceKindReport, nil
	case "flat_file", "file":
		return SourceKindFlatFile, nil
	default:
		return "", fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, s)
	}
}

// Source is a piece of text known to the retrieval core: a document,
// a knowledge report, or an uploaded file. The surrounding application
// owns the canonical copy; the core keeps a catalogue entry so that a
// full reindex can rebuild the vector index from scratch.
type Source struct {
	// Kind identifies what the source is.
	Kind SourceKind

	// ID is the identifier assigned by the owning store.
	ID string

	// Title is used to build citation labels (document filename, report title).
	Title string

	// Content is the full extracted text.
	Content string

	// StructuredData holds the structured fields of a knowledge report.
	// It is indexed after the prose content, rendered as JSON.
	StructuredData map[string]any

	// ChunkCount is the number of chunks produced by the last indexing run.
	ChunkCount int

	// CreatedAt is when the source was first catalogued.
	CreatedAt time.Time

	// UpdatedAt is when the source was last indexed.
	UpdatedAt time.Time
}

// Key returns the catalogue key of the source, unique across kinds.
func (s *Source) Key() string {
	return SourceKey(s.Kind, s.ID)
}

// DisplayTitle returns the title, falling back to kind and id.
func (s *Source) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return fmt.Sprintf("%s %s", s.Kind.Description(), s.ID)
}

// Validate checks that the source can be indexed.
func (s *Source) Validate() error {
	if !s.Kind.IsValid() {
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, s.Kind)
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: source id is required", ErrInvalidInput)
	}
	return nil
}

// SourceKey builds the catalogue key for a kind and id.
func SourceKey(kind SourceKind, id string) string {
	return string(kind) + ":" + id
}
