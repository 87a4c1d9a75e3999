// Package list renders ranked retrieval results.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// linesPerResult is a label line, a preview line and a blank separator.
const linesPerResult = 3

// KeyMap holds the bindings ResultList reacts to.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Expand   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Expand:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
	}
}

// ResultList shows a window of results around the cursor. The selected
// result can be expanded to its full text below the list.
type ResultList struct {
	KeyMap KeyMap

	results  []domain.SearchResult
	cursor   int
	offset   int // first visible result
	expanded bool

	styles *styles.Styles
	width  int
	height int
}

func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{KeyMap: DefaultKeyMap(), styles: s, width: 80, height: 10}
}

func (r *ResultList) Init() tea.Cmd { return nil }

func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(r.results) == 0 {
		return r, nil
	}
	switch {
	case key.Matches(keyMsg, r.KeyMap.Up):
		r.SetSelected(r.cursor - 1)
	case key.Matches(keyMsg, r.KeyMap.Down):
		r.SetSelected(r.cursor + 1)
	case key.Matches(keyMsg, r.KeyMap.PageUp):
		r.SetSelected(max(r.cursor-r.pageSize(), 0))
	case key.Matches(keyMsg, r.KeyMap.PageDown):
		r.SetSelected(min(r.cursor+r.pageSize(), len(r.results)-1))
	case key.Matches(keyMsg, r.KeyMap.Home):
		r.SetSelected(0)
	case key.Matches(keyMsg, r.KeyMap.End):
		r.SetSelected(len(r.results) - 1)
	case key.Matches(keyMsg, r.KeyMap.Expand):
		r.expanded = !r.expanded
	}
	return r, nil
}

func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	end := min(r.offset+r.pageSize(), len(r.results))
	header := fmt.Sprintf("Results (%d)", len(r.results))
	if r.offset > 0 || end < len(r.results) {
		header += fmt.Sprintf("  %d-%d", r.offset+1, end)
	}

	var b strings.Builder
	b.WriteString(r.styles.Subtitle.Render(header))
	b.WriteString("\n")
	for i := r.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(r.row(i))
	}
	if sel := r.SelectedResult(); r.expanded && sel != nil {
		b.WriteString("\n\n")
		b.WriteString(r.styles.Border.Width(max(r.width-4, 20)).Render(sel.Content))
	}
	return b.String()
}

// row renders the label and score on one line and a flattened preview of
// the content on the next.
func (r *ResultList) row(i int) string {
	res := &r.results[i]
	label := res.Source
	if label == "" {
		label = res.RecordID
	}
	labelWidth := max(r.width-20, 10)
	label = fmt.Sprintf("%-*s  ", labelWidth, truncate(label, labelWidth))
	score := fmt.Sprintf("%.2f", res.Score)

	var head string
	if i == r.cursor {
		head = r.styles.Selected.Render("> " + label + score)
	} else {
		head = r.styles.Normal.Render("  "+label) + r.styles.Score(res.Score).Render(score)
	}
	preview := truncate(strings.Join(strings.Fields(res.Content), " "), max(r.width-6, 20))
	return head + "\n" + r.styles.Muted.Render("    "+preview)
}

func (r *ResultList) pageSize() int {
	return max((r.height-2)/linesPerResult, 1)
}

// scroll keeps the cursor inside the visible window.
func (r *ResultList) scroll() {
	page := r.pageSize()
	switch {
	case r.cursor < r.offset:
		r.offset = r.cursor
	case r.cursor >= r.offset+page:
		r.offset = r.cursor - page + 1
	}
	r.offset = max(min(r.offset, len(r.results)-page), 0)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the list, moving the cursor to the top and
// collapsing any expanded result.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.cursor, r.offset = 0, 0
	r.expanded = false
}

func (r *ResultList) Results() []domain.SearchResult { return r.results }
func (r *ResultList) Selected() int                  { return r.cursor }
func (r *ResultList) Count() int                     { return len(r.results) }
func (r *ResultList) Expanded() bool                 { return r.expanded }
func (r *ResultList) Offset() int                    { return r.offset }

// SetSelected moves the cursor; out-of-range indexes are ignored.
func (r *ResultList) SetSelected(index int) {
	if index < 0 || index >= len(r.results) {
		return
	}
	r.cursor = index
	r.scroll()
}

func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.cursor >= len(r.results) {
		return nil
	}
	return &r.results[r.cursor]
}

func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
	r.scroll()
}
