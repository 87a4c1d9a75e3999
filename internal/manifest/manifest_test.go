package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runbook.txt"), []byte("restart the worker pool"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.yaml"), []byte(`
sources:
  - kind: document
    id: "42"
    file: runbook.txt
  - kind: report
    id: "7"
    title: On-call Handover
    content: Notes from the handover interview.
    data:
      owner: platform
      steps: [page, triage]
`), 0o600))

	sources, err := Load(filepath.Join(dir, "sources.yaml"))
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, domain.SourceKindDocument, sources[0].Kind)
	assert.Equal(t, "42", sources[0].ID)
	assert.Equal(t, "runbook", sources[0].Title)
	assert.Equal(t, "restart the worker pool", sources[0].Content)

	assert.Equal(t, domain.SourceKindReport, sources[1].Kind)
	assert.Equal(t, "On-call Handover", sources[1].Title)
	assert.Equal(t, "platform", sources[1].StructuredData["owner"])
	assert.Equal(t, []any{"page", "triage"}, sources[1].StructuredData["steps"])
}

func TestLoad_NormalisesMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handover.md"),
		[]byte("# Platform Handover\n\nPage **on-call** via [PagerDuty](https://pd)."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.yaml"), []byte(`
sources:
  - kind: doc
    id: "1"
    file: handover.md
`), 0o600))

	sources, err := Load(filepath.Join(dir, "sources.yaml"))
	require.NoError(t, err)
	require.Len(t, sources, 1)

	assert.Equal(t, "Platform Handover", sources[0].Title)
	assert.Equal(t, "Platform Handover\n\nPage on-call via PagerDuty.", sources[0].Content)
}

func TestLoad_MissingManifest(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "sources: [kind: doc"},
		{name: "unknown kind", yaml: "sources:\n  - kind: wiki\n    id: a\n    content: x"},
		{name: "missing id", yaml: "sources:\n  - kind: doc\n    content: x"},
		{name: "file and content", yaml: "sources:\n  - kind: doc\n    id: a\n    file: a.txt\n    content: x"},
		{name: "missing file", yaml: "sources:\n  - kind: doc\n    id: a\n    file: a.txt"},
		{name: "data on document", yaml: "sources:\n  - kind: doc\n    id: a\n    content: x\n    data: {k: v}"},
		{name: "duplicate", yaml: "sources:\n  - kind: doc\n    id: a\n    content: x\n  - kind: doc\n    id: a\n    content: y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), t.TempDir())
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestParse_SameIDDifferentKinds(t *testing.T) {
	sources, err := Parse([]byte(`
sources:
  - {kind: doc, id: "1", content: a}
  - {kind: report, id: "1", content: b}
`), "")
	require.NoError(t, err)
	assert.Len(t, sources, 2)
}

func TestParse_Empty(t *testing.T) {
	sources, err := Parse([]byte(""), "")
	require.NoError(t, err)
	assert.Empty(t, sources)
}
