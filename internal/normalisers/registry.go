package normalisers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
	"github.com/custodia-labs/pipewrench/internal/normalisers/html"
	"github.com/custodia-labs/pipewrench/internal/normalisers/markdown"
	"github.com/custodia-labs/pipewrench/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.Normaliser = (*Registry)(nil)

// Registry selects a normaliser by file extension.
type Registry struct {
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates a registry that uses fallback for unknown extensions.
// Later normalisers override earlier ones for the same extension.
func NewRegistry(fallback driven.Normaliser, normalisers ...driven.Normaliser) *Registry {
	r := &Registry{
		byExt:    make(map[string]driven.Normaliser),
		fallback: fallback,
	}
	for _, n := range append([]driven.Normaliser{fallback}, normalisers...) {
		for _, ext := range n.SupportedExtensions() {
			r.byExt[strings.ToLower(ext)] = n
		}
	}
	return r
}

// Default returns a registry with the markdown, HTML and plain text normalisers.
func Default() *Registry {
	return NewRegistry(plaintext.New(), markdown.New(), html.New())
}

// For returns the normaliser for the named file.
func (r *Registry) For(name string) driven.Normaliser {
	if n, ok := r.byExt[strings.ToLower(filepath.Ext(name))]; ok {
		return n
	}
	return r.fallback
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise extracts the text of the named file with the matching normaliser.
func (r *Registry) Normalise(name string, raw []byte) (*domain.NormalisedText, error) {
	text, err := r.For(name).Normalise(name, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a text file", domain.ErrInvalidInput, filepath.Base(name))
	}
	return text, nil
}
