package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/views/sessions"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// screen adapts one view to the App. Each view's Update returns its own
// concrete type, so the App talks to them through these closures.
type screen struct {
	update func(tea.Msg) tea.Cmd
	view   func() string
	enter  func() tea.Cmd
	resize func(width, height int)
	err    func() error
}

// App routes messages between the menu, chat, search, sessions and help
// screens. Only one screen is active; async results are delivered to the
// screen that asked for them whichever one is showing.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	menuView     *menu.View
	chatView     *chat.View
	searchView   *search.View
	sessionsView *sessions.View
	screens      map[messages.ViewType]screen

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	userID := ports.userID()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         newHelp(s),
		menuView:     menu.NewView(s, km),
		chatView:     chat.NewView(s, km, ports.Chat, userID),
		searchView:   search.NewView(s, km, ports.Retriever),
		sessionsView: sessions.NewView(s, km, ports.Sessions, userID),
		currentView:  messages.ViewMenu,
	}
	a.screens = a.buildScreens()
	return a, nil
}

func (a *App) buildScreens() map[messages.ViewType]screen {
	none := func() tea.Cmd { return nil }
	noErr := func() error { return nil }
	helpResize := func(width, _ int) { a.help.Width = width }
	return map[messages.ViewType]screen{
		messages.ViewMenu: {
			update: a.updateMenu,
			view:   a.menuView.View,
			enter:  none,
			resize: a.menuView.SetDimensions,
			err:    noErr,
		},
		messages.ViewChat: {
			update: a.updateChat,
			view:   a.chatView.View,
			enter:  a.chatView.Init,
			resize: a.chatView.SetDimensions,
			err:    a.chatView.Err,
		},
		messages.ViewSearch: {
			update: a.updateSearch,
			view:   a.searchView.View,
			enter:  a.enterSearch,
			resize: a.searchView.SetDimensions,
			err:    a.searchView.Err,
		},
		messages.ViewSessions: {
			update: a.updateSessions,
			view:   a.sessionsView.View,
			enter:  a.sessionsView.Refresh,
			resize: a.sessionsView.SetDimensions,
			err:    a.sessionsView.Err,
		},
		messages.ViewHelp: {
			update: a.updateHelp,
			view:   a.viewHelp,
			enter:  none,
			resize: helpResize,
			err:    noErr,
		},
	}
}

func (a *App) updateMenu(msg tea.Msg) (cmd tea.Cmd) {
	a.menuView, cmd = a.menuView.Update(msg)
	return cmd
}

func (a *App) updateChat(msg tea.Msg) (cmd tea.Cmd) {
	a.chatView, cmd = a.chatView.Update(msg)
	return cmd
}

func (a *App) updateSearch(msg tea.Msg) (cmd tea.Cmd) {
	a.searchView, cmd = a.searchView.Update(msg)
	return cmd
}

func (a *App) updateSessions(msg tea.Msg) (cmd tea.Cmd) {
	a.sessionsView, cmd = a.sessionsView.Update(msg)
	return cmd
}

// enterSearch starts each visit with an empty query and result list.
func (a *App) enterSearch() tea.Cmd {
	a.searchView.Reset()
	return a.searchView.Init()
}

func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	a.sessionsView.WithContext(ctx)
	return a
}

// WithFile scopes chat and search to one indexed file.
func (a *App) WithFile(fileID string) *App {
	a.chatView.WithFile(fileID)
	a.searchView.WithFile(fileID)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle("pipewrench - Knowledge Chat"))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
	case messages.Quit:
		return a, tea.Quit
	case messages.ViewChanged:
		a.currentView = msg.View
		return a, a.active().enter()
	case messages.ErrorOccurred:
		a.err = msg.Err
	case messages.SearchCompleted:
		return a, a.deliver(messages.ViewSearch, msg)
	case messages.ChatAnswered:
		return a, a.deliver(messages.ViewChat, msg)
	case messages.SessionsLoaded:
		return a, a.deliver(messages.ViewSessions, msg)
	case messages.TranscriptLoaded:
		cmd := a.screens[messages.ViewChat].update(msg)
		a.err = msg.Err
		if msg.Err == nil {
			a.currentView = messages.ViewChat
		}
		return a, cmd
	}
	return a, a.active().update(msg)
}

// deliver hands an async result to the screen that requested it and
// records that screen's error state.
func (a *App) deliver(to messages.ViewType, msg tea.Msg) tea.Cmd {
	sc := a.screens[to]
	cmd := sc.update(msg)
	a.err = sc.err()
	return cmd
}

func (a *App) active() screen {
	if sc, ok := a.screens[a.currentView]; ok {
		return sc
	}
	return a.screens[messages.ViewMenu]
}

func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.active().view()
}

func (a *App) updateHelp(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		a.currentView = messages.ViewMenu
	}
	return nil
}

// viewHelp lists every binding in columns, built from the same keymap the
// views match against.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Type a question in Chat; the chat transcript scrolls with pgup/pgdn."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

func newHelp(s *styles.Styles) help.Model {
	h := help.New()
	h.Styles.FullKey = s.Selected
	h.Styles.FullDesc = s.Muted
	h.Styles.FullSeparator = s.Muted
	h.FullSeparator = "    "
	return h
}

func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) Query() string                  { return a.searchView.Query() }
func (a *App) Results() []domain.SearchResult { return a.searchView.Results() }
func (a *App) SessionID() string              { return a.chatView.SessionID() }
func (a *App) CurrentView() messages.ViewType { return a.currentView }
func (a *App) Err() error                     { return a.err }
func (a *App) Ready() bool                    { return a.ready }

// SetDimensions resizes every screen, not only the active one, so a
// switch never shows a stale layout.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	for _, sc := range a.screens {
		sc.resize(width, height)
	}
}
