// Package sessions provides the saved-conversations view for the TUI.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// ErrNoSessionService indicates that no session service was provided.
var ErrNoSessionService = errors.New("session service is required")

// timeLayout formats last-activity times in the list.
const timeLayout = "2006-01-02 15:04"

// Lister reads stored conversations. driving.SessionService satisfies it.
type Lister interface {
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error)
	Transcript(ctx context.Context, sessionID, userID string) ([]domain.ChatMessage, error)
}

// View lists the user's chat sessions, most recent first.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	lister Lister
	userID string
	ctx    context.Context

	sessions []domain.ChatSession
	selected int
	loading  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new sessions view.
func NewView(s *styles.Styles, km *keymap.KeyMap, lister Lister, userID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		lister: lister,
		userID: userID,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the session list.
func (v *View) Init() tea.Cmd {
	return v.Refresh()
}

// Refresh reloads the session list.
func (v *View) Refresh() tea.Cmd {
	v.loading = true
	lister := v.lister
	ctx := v.ctx
	userID := v.userID
	return func() tea.Msg {
		if lister == nil {
			return messages.SessionsLoaded{Err: ErrNoSessionService}
		}
		sessions, err := lister.ListSessions(ctx, userID)
		return messages.SessionsLoaded{Sessions: sessions, Err: err}
	}
}

// Update handles messages for the sessions view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SessionsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.sessions = msg.Sessions
			v.selected = min(v.selected, max(len(v.sessions)-1, 0))
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.sessions)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.Select):
		return v, v.open()
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.Refresh()
	}
	return v, nil
}

// open loads the selected session's transcript.
func (v *View) open() tea.Cmd {
	session := v.SelectedSession()
	if session == nil {
		return nil
	}
	lister := v.lister
	ctx := v.ctx
	userID := v.userID
	id := session.ID
	return func() tea.Msg {
		msgs, err := lister.Transcript(ctx, id, userID)
		return messages.TranscriptLoaded{SessionID: id, Messages: msgs, Err: err}
	}
}

// View renders the sessions view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Sessions"), ""}

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case len(v.sessions) == 0:
		sections = append(sections, v.styles.Muted.Render("No conversations yet"))
	default:
		sections = append(sections, v.renderList())
	}

	sections = append(sections, "", v.styles.Help.Render("[j/k] Navigate  [Enter] Open  [r] Refresh  [Esc] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderList() string {
	visible := max(v.height-6, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.sessions))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		s := v.sessions[i]
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%-*s  %s", max(v.width-22, 10), title, s.UpdatedAt.Local().Format(timeLayout))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Sessions returns the loaded sessions.
func (v *View) Sessions() []domain.ChatSession {
	return v.sessions
}

// Selected returns the index of the selected session.
func (v *View) Selected() int {
	return v.selected
}

// SelectedSession returns the selected session, or nil if the list is empty.
func (v *View) SelectedSession() *domain.ChatSession {
	if v.selected < 0 || v.selected >= len(v.sessions) {
		return nil
	}
	return &v.sessions[v.selected]
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
