package list

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{RecordID: "doc_1_chunk_0", Source: "Runbook (Chunk 1)", Content: "restart the\nworker pool", Score: 0.91},
		{RecordID: "doc_2_chunk_0", Source: "Policy (Chunk 1)", Content: "rotate keys monthly", Score: 0.52},
		{RecordID: "flat_file_f_chunk_0", Content: "unlabelled", Score: 0.10},
	}
}

func TestNewResultList(t *testing.T) {
	r := NewResultList(nil)

	require.NotNil(t, r)
	assert.NotNil(t, r.styles)
	assert.Zero(t, r.Count())
	assert.Nil(t, r.SelectedResult())
	assert.Nil(t, r.Init())
}

func TestResultList_View_Empty(t *testing.T) {
	assert.Contains(t, NewResultList(nil).View(), "No results")
}

func TestResultList_View(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(100, 30)
	r.SetResults(testResults())

	view := r.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "Runbook (Chunk 1)")
	assert.Contains(t, view, "restart the worker pool")
	assert.Contains(t, view, "0.91")
	assert.Contains(t, view, "flat_file_f_chunk_0")
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(testResults())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 2, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, "Policy (Chunk 1)", r.SelectedResult().Source)
}

func TestResultList_SetSelected(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(testResults())

	r.SetSelected(2)
	assert.Equal(t, 2, r.Selected())

	r.SetSelected(10)
	assert.Equal(t, 2, r.Selected())
}

func TestResultList_Expanded(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(80, 30)
	r.SetResults(testResults())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, r.Expanded())
	assert.Contains(t, r.View(), "worker pool")

	r.SetResults(testResults())
	assert.False(t, r.Expanded())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
}

func manyResults(n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{RecordID: fmt.Sprintf("doc_%d_chunk_0", i), Content: "text", Score: 0.5}
	}
	return out
}

func TestResultList_Paging(t *testing.T) {
	tests := []struct {
		name       string
		keys       []tea.KeyMsg
		wantCursor int
		wantOffset int
	}{
		{name: "page down", keys: []tea.KeyMsg{{Type: tea.KeyPgDown}}, wantCursor: 4, wantOffset: 1},
		{name: "page down clamps", keys: []tea.KeyMsg{{Type: tea.KeyPgDown}, {Type: tea.KeyPgDown}, {Type: tea.KeyPgDown}}, wantCursor: 9, wantOffset: 6},
		{name: "end", keys: []tea.KeyMsg{{Type: tea.KeyEnd}}, wantCursor: 9, wantOffset: 6},
		{name: "end then home", keys: []tea.KeyMsg{{Type: tea.KeyEnd}, {Type: tea.KeyHome}}, wantCursor: 0, wantOffset: 0},
		{name: "end then page up", keys: []tea.KeyMsg{{Type: tea.KeyEnd}, {Type: tea.KeyPgUp}}, wantCursor: 5, wantOffset: 5},
		{name: "G", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("G")}}, wantCursor: 9, wantOffset: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResultList(nil)
			r.SetDimensions(80, 14) // four results per page
			r.SetResults(manyResults(10))

			for _, k := range tt.keys {
				r, _ = r.Update(k)
			}

			assert.Equal(t, tt.wantCursor, r.Selected())
			assert.Equal(t, tt.wantOffset, r.Offset())
		})
	}
}

func TestResultList_View_Window(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(80, 14)
	r.SetResults(manyResults(10))
	r.SetSelected(5)

	view := r.View()

	assert.Contains(t, view, "Results (10)  3-6")
	assert.Contains(t, view, "doc_2_chunk_0")
	assert.Contains(t, view, "doc_5_chunk_0")
	assert.NotContains(t, view, "doc_1_chunk_0")
	assert.NotContains(t, view, "doc_6_chunk_0")
}

func TestResultList_EmptyIgnoresKeys(t *testing.T) {
	r := NewResultList(nil)

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyEnd})

	assert.False(t, r.Expanded())
	assert.Zero(t, r.Selected())
}
