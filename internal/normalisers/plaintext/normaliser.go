package plaintext

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// utf8BOM is stripped from the start of files saved by some editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text and is the fallback for unknown extensions.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json", ".yaml", ".yml", ".toml"}
}

// Normalise returns the text unchanged apart from line endings.
// Content that is not valid UTF-8 or holds NUL bytes is rejected as binary.
func (n *Normaliser) Normalise(name string, raw []byte) (*domain.NormalisedText, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) || bytes.IndexByte(raw, 0) >= 0 {
		return nil, domain.ErrInvalidInput
	}

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return &domain.NormalisedText{
		Title:   domain.TitleFromFileName(name),
		Content: strings.TrimSpace(content),
		Format:  "plaintext",
	}, nil
}
