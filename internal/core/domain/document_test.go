package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRecordID tests the deterministic record id format
func TestRecordID(t *testing.T) {
	assert.Equal(t, "doc_12_chunk_0", RecordID(SourceKindDocument, "12", 0))
	assert.Equal(t, "report_7_chunk_3", RecordID(SourceKindReport, "7", 3))
	assert.Equal(t, "flat_file_abc_chunk_1", RecordID(SourceKindFlatFile, "abc", 1))
}

// TestRecordID_Deterministic tests that the same chunk always maps to the same id
func TestRecordID_Deterministic(t *testing.T) {
	c := Chunk{SourceKind: SourceKindDocument, SourceID: "9", Ordinal: 2}
	assert.Equal(t, c.RecordID(), c.RecordID())
	assert.Equal(t, RecordID(SourceKindDocument, "9", 2), c.RecordID())
}

// TestCitationLabel tests one-based chunk numbering in labels
func TestCitationLabel(t *testing.T) {
	assert.Equal(t, "Runbook.pdf (Chunk 1)", CitationLabel("Runbook.pdf", 0))
	assert.Equal(t, "Q3 Report (Chunk 4)", CitationLabel("Q3 Report", 3))
}

// TestNewVectorRecord tests that records carry all citation and filter fields
func TestNewVectorRecord(t *testing.T) {
	src := &Source{Kind: SourceKindDocument, ID: "5", Title: "Pumps.docx"}
	chunk := &Chunk{
		SourceKind: SourceKindDocument,
		SourceID:   "5",
		Ordinal:    1,
		Content:    "prime the pump",
		Embedding:  []float32{1, 0},
	}

	rec := NewVectorRecord(src, chunk)

	assert.Equal(t, "doc_5_chunk_1", rec.ID)
	assert.Equal(t, []float32{1, 0}, rec.Vector)
	assert.Equal(t, "doc", rec.Metadata[MetaSourceKind])
	assert.Equal(t, "5", rec.Metadata[MetaSourceID])
	assert.Equal(t, 1, rec.Metadata[MetaChunkIndex])
	assert.Equal(t, "prime the pump", rec.Metadata[MetaContent])
	assert.Equal(t, "Pumps.docx (Chunk 2)", rec.Metadata[MetaSource])
	assert.Equal(t, "Pumps.docx", rec.Metadata[MetaTitle])
}

// TestMetadata_Accessors tests typed reads including JSON-decoded numbers
func TestMetadata_Accessors(t *testing.T) {
	m := Metadata{"s": "text", "i": 3, "f": float64(4), "bad": true}

	assert.Equal(t, "text", m.String("s"))
	assert.Equal(t, "", m.String("i"))
	assert.Equal(t, "", m.String("missing"))
	assert.Equal(t, 3, m.Int("i"))
	assert.Equal(t, 4, m.Int("f"))
	assert.Equal(t, 0, m.Int("bad"))
}

// TestMetadataFilter_Matches tests exact-match semantics
func TestMetadataFilter_Matches(t *testing.T) {
	meta := Metadata{MetaSourceKind: "flat_file", MetaSourceID: "f1", MetaChunkIndex: 0}

	tests := []struct {
		name     string
		filter   MetadataFilter
		expected bool
	}{
		{name: "nil filter matches", filter: nil, expected: true},
		{name: "empty filter matches", filter: MetadataFilter{}, expected: true},
		{name: "file filter matches", filter: FileFilter("f1"), expected: true},
		{name: "other file does not match", filter: FileFilter("f2"), expected: false},
		{name: "missing key does not match", filter: MetadataFilter{"owner": "x"}, expected: false},
		{name: "non-string value does not match", filter: MetadataFilter{MetaChunkIndex: "0"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(meta))
		})
	}
}

func TestTitleFromFileName(t *testing.T) {
	tests := map[string]string{
		"runbook.md":                  "runbook",
		"/srv/docs/on-call_guide.txt": "on call guide",
		"README":                      "README",
		"archive.tar.gz":              "archive.tar",
		"":                            "",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, TitleFromFileName(in))
		})
	}
}
