package driven

import "github.com/custodia-labs/pipewrench/internal/core/domain"

// Normaliser turns the raw bytes of a file into indexable text.
type Normaliser interface {
	// SupportedExtensions returns the lower-case file extensions handled,
	// including the leading dot.
	SupportedExtensions() []string

	// Normalise extracts the title and plain text of the named file.
	Normalise(name string, raw []byte) (*domain.NormalisedText, error)
}
