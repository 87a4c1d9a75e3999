// Package search is the raw retrieval view: type a query, browse the
// ranked passages, expand one to read it in full.
package search

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// historySize bounds the queries kept for recall.
const historySize = 20

// Searcher is the slice of driving.RetrieverService this view needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// View has two modes. While typing, keys go to the query prompt and
// up/down walk the query history. After a search, keys move through the
// result list.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	list      *list.ResultList
	statusbar *status.Bar

	searcher Searcher
	ctx      context.Context
	opts     domain.SearchOptions

	typing  bool
	pending string // query in flight; completions for any other are stale
	history []string
	recall  int // index into history while browsing it, len(history) otherwise

	width  int
	height int
	ready  bool
	err    error
}

func NewView(s *styles.Styles, km *keymap.KeyMap, searcher Searcher) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewPrompt(s, "Search", "Find passages in the knowledge base..."),
		list:      list.NewResultList(s),
		statusbar: status.NewBar(s, km),
		searcher:  searcher,
		ctx:       context.Background(),
		typing:    true,
		width:     80,
		height:    24,
	}
}

func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithFile restricts searches to the chunks of one uploaded file.
func (v *View) WithFile(fileID string) *View {
	v.opts.FileID = fileID
	return v
}

func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	case messages.SearchCompleted:
		v.complete(msg)
		return v, nil
	case messages.ErrorOccurred:
		v.pending = ""
		v.setError(msg.Err)
		return v, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	if keymap.Matches(msg.String(), v.keymap.Back) {
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	if v.typing {
		return v.handleTyping(msg)
	}

	if keymap.Matches(msg.String(), v.keymap.NewSearch) {
		v.typing = true
		v.recall = len(v.history)
		v.input.SetValue("")
		return v.input.Focus()
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *View) handleTyping(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		return v.submit(v.input.Value())
	case tea.KeyUp:
		v.browseHistory(-1)
		return nil
	case tea.KeyDown:
		v.browseHistory(1)
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

// browseHistory steps through earlier queries; stepping past the newest
// clears the prompt.
func (v *View) browseHistory(step int) {
	if len(v.history) == 0 {
		return
	}
	v.recall = min(max(v.recall+step, 0), len(v.history))
	if v.recall == len(v.history) {
		v.input.SetValue("")
		return
	}
	v.input.SetValue(v.history[v.recall])
}

func (v *View) submit(query string) tea.Cmd {
	if query == "" || v.pending != "" {
		return nil
	}
	v.remember(query)
	v.pending = query
	v.typing = false
	v.input.Blur()
	spin := v.statusbar.SetState(status.StateSearching)
	return tea.Batch(spin, v.search(query))
}

func (v *View) remember(query string) {
	v.history = slices.DeleteFunc(v.history, func(q string) bool { return q == query })
	v.history = append(v.history, query)
	if len(v.history) > historySize {
		v.history = v.history[len(v.history)-historySize:]
	}
	v.recall = len(v.history)
}

func (v *View) search(query string) tea.Cmd {
	searcher, ctx, opts := v.searcher, v.ctx, v.opts
	return func() tea.Msg {
		if searcher == nil {
			return messages.ErrorOccurred{Err: ErrNoRetriever}
		}
		results, err := searcher.Search(ctx, query, opts)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) complete(msg messages.SearchCompleted) {
	if v.pending != "" && msg.Query != v.pending {
		return
	}
	v.pending = ""
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Results))
	v.typing = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := v.styles.Title.Render("Search")
	if v.opts.FileID != "" {
		title += " " + v.styles.Muted.Render("in file "+v.opts.FileID)
	}
	sections := []string{title, "", v.input.View(), ""}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// Title, prompt, spacers and the status bar take ten rows.
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

func (v *View) Width() int    { return v.width }
func (v *View) Height() int   { return v.height }
func (v *View) Ready() bool   { return v.ready }
func (v *View) Err() error    { return v.err }
func (v *View) Query() string { return v.input.Value() }

func (v *View) SetQuery(query string) { v.input.SetValue(query) }

func (v *View) Results() []domain.SearchResult       { return v.list.Results() }
func (v *View) SelectedIndex() int                   { return v.list.Selected() }
func (v *View) SelectedResult() *domain.SearchResult { return v.list.SelectedResult() }

// Expanded reports whether the selected result is shown in full.
func (v *View) Expanded() bool { return v.list.Expanded() }

// History returns past queries, oldest first.
func (v *View) History() []string { return slices.Clone(v.history) }

// Searching reports whether a query is in flight.
func (v *View) Searching() bool { return v.pending != "" }

func (v *View) InputFocused() bool { return v.typing }

func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset returns to an empty prompt. History survives.
func (v *View) Reset() {
	v.typing = true
	v.pending = ""
	v.recall = len(v.history)
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}
