// Package chunker splits source text into overlapping word windows.
package chunker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits source content into word-window chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Returns domain.ErrConfiguration unless 0 <= overlap < size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}

	return p, nil
}

// FromSettings creates a processor from chunker settings.
func FromSettings(s domain.ChunkerSettings) (*Processor, error) {
	return New(WithChunkSize(s.Size), WithOverlap(s.Overlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size in words.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in words.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split breaks text into windows using the processor's configuration.
func (p *Processor) Split(text string) []string {
	return split(strings.Fields(text), p.chunkSize, p.overlap)
}

// Process splits a source into chunks with consecutive ordinals.
// Report structured data, when present, is rendered as indented JSON and
// chunked after the prose, continuing the ordinal sequence.
func (p *Processor) Process(ctx context.Context, src *domain.Source) ([]domain.Chunk, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source is nil", domain.ErrInvalidInput)
	}

	texts := p.Split(src.Content)

	if src.Kind == domain.SourceKindReport && len(src.StructuredData) > 0 {
		data, err := json.MarshalIndent(src.StructuredData, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode structured data: %w", err)
		}
		texts = append(texts, p.Split(string(data))...)
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks = append(chunks, domain.Chunk{
			SourceKind: src.Kind,
			SourceID:   src.ID,
			Ordinal:    i,
			Content:    text,
		})
	}

	return chunks, nil
}

// Split breaks text into windows of size words, each starting size-overlap
// words after the previous one. The last window is the first one that
// reaches the end of the text, so it may be shorter than size.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return split(strings.Fields(text), size, overlap), nil
}

func split(words []string, size, overlap int) []string {
	total := len(words)
	if total == 0 {
		return []string{}
	}

	step := size - overlap
	chunks := make([]string, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := min(start+size, total)
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if start+size >= total {
			break
		}
	}

	return chunks
}

func validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrConfiguration, overlap, size)
	}
	return nil
}
