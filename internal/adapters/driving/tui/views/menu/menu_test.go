package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyView() *View {
	v := NewView(nil, nil)
	v.SetDimensions(80, 24)
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, v)
	assert.Equal(t, DefaultItems(), v.items)
	assert.Zero(t, v.Selected())
	assert.Nil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Update_WindowSize(t *testing.T) {
	v := NewView(nil, nil)

	updated, cmd := v.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Same(t, v, updated)
	assert.Nil(t, cmd)
	assert.True(t, v.ready)
	assert.Equal(t, 100, v.width)
	assert.Equal(t, 50, v.height)
}

func TestView_Navigate(t *testing.T) {
	tests := []struct {
		name  string
		start int
		keys  []tea.KeyMsg
		want  int
	}{
		{name: "down arrow", start: 0, keys: []tea.KeyMsg{{Type: tea.KeyDown}}, want: 1},
		{name: "j twice", start: 0, keys: []tea.KeyMsg{runes("j"), runes("j")}, want: 2},
		{name: "stops at last", start: 4, keys: []tea.KeyMsg{runes("j")}, want: 4},
		{name: "up arrow", start: 3, keys: []tea.KeyMsg{{Type: tea.KeyUp}}, want: 2},
		{name: "stops at first", start: 0, keys: []tea.KeyMsg{runes("k")}, want: 0},
		{name: "unknown key", start: 2, keys: []tea.KeyMsg{runes("x")}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := readyView()
			v.selected = tt.start
			for _, k := range tt.keys {
				v.Update(k)
			}
			assert.Equal(t, tt.want, v.Selected())
		})
	}
}

func TestView_Enter_ChangesView(t *testing.T) {
	tests := []struct {
		name     string
		selected int
		want     messages.ViewType
	}{
		{"chat", 0, messages.ViewChat},
		{"search", 1, messages.ViewSearch},
		{"sessions", 2, messages.ViewSessions},
		{"help", 3, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := readyView()
			v.selected = tt.selected

			_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_NumberShortcut(t *testing.T) {
	v := readyView()

	_, cmd := v.Update(runes("3"))

	require.NotNil(t, cmd)
	assert.Equal(t, 2, v.Selected())
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSessions}, cmd())

	_, cmd = v.Update(runes("9"))
	assert.Nil(t, cmd)
	assert.Equal(t, 2, v.Selected())
}

func TestView_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		sel  int
	}{
		{name: "q", msg: runes("q")},
		{name: "enter on quit", msg: tea.KeyMsg{Type: tea.KeyEnter}, sel: 4},
		{name: "shortcut", msg: runes("5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := readyView()
			v.selected = tt.sel

			_, cmd := v.Update(tt.msg)

			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestView_View(t *testing.T) {
	v := readyView()
	v.selected = 1

	out := v.View()

	assert.Contains(t, out, "Pipewrench")
	assert.Contains(t, out, "knowledge")
	for _, item := range DefaultItems() {
		assert.Contains(t, out, item.Label)
		assert.Contains(t, out, item.Desc)
	}
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, "[q] quit")
}
