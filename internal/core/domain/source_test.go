package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSourceKind_IsValid tests recognised and unknown kinds
func TestSourceKind_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		kind     SourceKind
		expected bool
	}{
		{name: "doc is valid", kind: SourceKindDocument, expected: true},
		{name: "report is valid", kind: SourceKindReport, expected: true},
		{name: "flat_file is valid", kind: SourceKindFlatFile, expected: true},
		{name: "empty is invalid", kind: SourceKind(""), expected: false},
		{name: "unknown is invalid", kind: SourceKind("email"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsValid())
		})
	}
}

// TestParseSourceKind tests aliases and rejection of unknown input
func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		input    string
		expected SourceKind
	}{
		{input: "doc", expected: SourceKindDocument},
		{input: "Document", expected: SourceKindDocument},
		{input: " report ", expected: SourceKindReport},
		{input: "file", expected: SourceKindFlatFile},
		{input: "flat_file", expected: SourceKindFlatFile},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseSourceKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}

	_, err := ParseSourceKind("spreadsheet")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// TestSourceKind_Description tests human-readable names
func TestSourceKind_Description(t *testing.T) {
	assert.Equal(t, "Document", SourceKindDocument.Description())
	assert.Equal(t, "Knowledge Report", SourceKindReport.Description())
	assert.Equal(t, "Uploaded File", SourceKindFlatFile.Description())
	assert.Equal(t, unknownDescription, SourceKind("x").Description())
}

// TestSource_Key tests that keys differ across kinds sharing an id
func TestSource_Key(t *testing.T) {
	doc := Source{Kind: SourceKindDocument, ID: "42"}
	report := Source{Kind: SourceKindReport, ID: "42"}

	assert.Equal(t, "doc:42", doc.Key())
	assert.Equal(t, "report:42", report.Key())
	assert.NotEqual(t, doc.Key(), report.Key())
}

// TestSource_DisplayTitle tests the title fallback
func TestSource_DisplayTitle(t *testing.T) {
	titled := Source{Kind: SourceKindDocument, ID: "1", Title: "Runbook.pdf"}
	untitled := Source{Kind: SourceKindReport, ID: "7"}

	assert.Equal(t, "Runbook.pdf", titled.DisplayTitle())
	assert.Equal(t, "Knowledge Report 7", untitled.DisplayTitle())
}

// TestSource_Validate tests required fields
func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr bool
	}{
		{name: "valid", source: Source{Kind: SourceKindDocument, ID: "1"}},
		{name: "missing id", source: Source{Kind: SourceKindDocument, ID: "  "}, wantErr: true},
		{name: "bad kind", source: Source{Kind: "email", ID: "1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}
