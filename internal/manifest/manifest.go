// Package manifest reads YAML source manifests for bulk indexing.
//
// A manifest lists the documents, reports and files to index:
//
//	sources:
//	  - kind: doc
//	    id: "42"
//	    title: Onboarding Runbook
//	    file: runbook.txt
//	  - kind: report
//	    id: "7"
//	    title: On-call Handover
//	    content: Notes from the handover interview.
//	    data:
//	      owner: platform
//
// Relative file paths are resolved against the manifest's directory.
// Files are normalised by extension, so markdown and HTML markup is removed
// and an untitled file takes its first heading or <title> as title.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
	"github.com/custodia-labs/pipewrench/internal/normalisers"
)

// Entry is one source listed in a manifest.
type Entry struct {
	Kind    string         `yaml:"kind"`
	ID      string         `yaml:"id"`
	Title   string         `yaml:"title"`
	File    string         `yaml:"file,omitempty"`
	Content string         `yaml:"content,omitempty"`
	Data    map[string]any `yaml:"data,omitempty"`
}

// Manifest is the root document.
type Manifest struct {
	Sources []Entry `yaml:"sources"`
}

// Load reads the manifest at path and resolves every entry into a source.
func Load(path string) ([]domain.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes manifest YAML. baseDir resolves relative file paths.
func Parse(data []byte, baseDir string) ([]domain.Source, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %w", domain.ErrInvalidInput, err)
	}

	sources := make([]domain.Source, 0, len(m.Sources))
	seen := make(map[string]int, len(m.Sources))
	for i, entry := range m.Sources {
		src, err := entry.resolve(baseDir)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i+1, err)
		}
		if prev, ok := seen[src.Key()]; ok {
			return nil, fmt.Errorf("%w: manifest entry %d duplicates entry %d (%s)",
				domain.ErrInvalidInput, i+1, prev, src.Key())
		}
		seen[src.Key()] = i + 1
		sources = append(sources, src)
	}
	return sources, nil
}

func (e Entry) resolve(baseDir string) (domain.Source, error) {
	kind, err := domain.ParseSourceKind(e.Kind)
	if err != nil {
		return domain.Source{}, err
	}

	content := e.Content
	var fileTitle string
	switch {
	case e.File != "" && e.Content != "":
		return domain.Source{}, fmt.Errorf("%w: set either file or content, not both", domain.ErrInvalidInput)
	case e.File != "":
		path := e.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return domain.Source{}, fmt.Errorf("%w: file %s does not exist", domain.ErrInvalidInput, e.File)
		}
		if err != nil {
			return domain.Source{}, fmt.Errorf("read %s: %w", e.File, err)
		}
		text, err := normalisers.Default().Normalise(path, raw)
		if err != nil {
			return domain.Source{}, err
		}
		content = text.Content
		fileTitle = text.Title
	}

	if len(e.Data) > 0 && kind != domain.SourceKindReport {
		return domain.Source{}, fmt.Errorf("%w: structured data is only supported for reports", domain.ErrInvalidInput)
	}

	title := e.Title
	if title == "" {
		title = fileTitle
	}

	src := domain.Source{
		Kind:           kind,
		ID:             e.ID,
		Title:          title,
		Content:        content,
		StructuredData: e.Data,
	}
	if err := src.Validate(); err != nil {
		return domain.Source{}, err
	}
	return src, nil
}
