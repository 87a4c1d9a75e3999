// Package keymap holds the key bindings shared by every TUI view.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the full set of bindings. Views pick the fields they handle;
// the status bar and help screen read the same bindings for their hints.
type KeyMap struct {
	Quit     key.Binding
	MenuQuit key.Binding
	Help     key.Binding
	Back     key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	Send    key.Binding
	NewChat key.Binding
	Scroll  key.Binding

	NewSearch key.Binding
	Expand    key.Binding

	Refresh key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the stock bindings. Chat and search take free
// text, so only the menu quits on a bare "q".
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:     bind("ctrl+c", "quit", "ctrl+c"),
		MenuQuit: bind("q", "quit", "q"),
		Help:     bind("?", "help", "?"),
		Back:     bind("esc", "back", "esc"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),

		Send:    bind("enter", "send", "enter"),
		NewChat: bind("ctrl+n", "new chat", "ctrl+n"),
		// The chat viewport handles paging itself; this binding is for hints.
		Scroll: bind("pgup/pgdn", "scroll", "pgup", "pgdown"),

		NewSearch: bind("n", "new search", "n"),
		Expand:    bind("enter", "expand", "enter"),

		Refresh: bind("r", "refresh", "r"),
	}
}

func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.MenuQuit}
}

func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.NewChat, k.Back}
}

func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Expand, k.Back}
}

// FullHelp groups every binding into columns for the help screen:
// navigation, chat, search and sessions, then global keys.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Send, k.NewChat, k.Scroll},
		{k.NewSearch, k.Expand, k.Refresh},
		{k.Help, k.MenuQuit, k.Quit},
	}
}

// Matches reports whether keyStr triggers an enabled binding.
func Matches(keyStr string, binding key.Binding) bool {
	return binding.Enabled() && slices.Contains(binding.Keys(), keyStr)
}
