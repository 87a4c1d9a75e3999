// Package menu is the landing view: a short list of destinations picked
// with the arrow keys or a number shortcut.
package menu

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
)

// Item is one destination. Items with Quit set end the program instead of
// switching views.
type Item struct {
	Label string
	Desc  string
	View  messages.ViewType
	Quit  bool
}

// DefaultItems lists the destinations in display order.
func DefaultItems() []Item {
	return []Item{
		{Label: "Chat", Desc: "Ask a question and get a cited answer", View: messages.ViewChat},
		{Label: "Search", Desc: "Browse the passages that match a query", View: messages.ViewSearch},
		{Label: "Sessions", Desc: "Pick up an earlier conversation", View: messages.ViewSessions},
		{Label: "Help", Desc: "Key bindings", View: messages.ViewHelp},
		{Label: "Quit", Desc: "Leave pipewrench", Quit: true},
	}
}

type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		items:  DefaultItems(),
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd { return nil }

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(keyStr string) tea.Cmd {
	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		v.selected = max(v.selected-1, 0)
	case keymap.Matches(keyStr, v.keymap.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
	case keymap.Matches(keyStr, v.keymap.Select):
		return v.choose(v.selected)
	case keymap.Matches(keyStr, v.keymap.MenuQuit):
		return tea.Quit
	default:
		// 1-based shortcut, e.g. "2" jumps straight to Search.
		if n, err := strconv.Atoi(keyStr); err == nil && n >= 1 && n <= len(v.items) {
			v.selected = n - 1
			return v.choose(v.selected)
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Pipewrench"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Ask your organisation's knowledge"))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, item := range v.items {
		labelWidth = max(labelWidth, lipgloss.Width(item.Label))
	}

	for i, item := range v.items {
		cursor, label := "  ", v.styles.Normal
		if i == v.selected {
			cursor, label = "> ", v.styles.Selected
		}
		num := v.styles.Muted.Render(strconv.Itoa(i + 1))
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(item.Label))
		b.WriteString(cursor + num + " " + label.Render(item.Label) + pad + "  " + v.styles.Muted.Render(item.Desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(hints(v.keymap.MenuHelp())))
	return b.String()
}

func hints(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, "["+b.Help().Key+"] "+b.Help().Desc)
	}
	return strings.Join(parts, "  ")
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

func (v *View) Selected() int { return v.selected }
