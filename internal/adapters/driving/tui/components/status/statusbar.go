// Package status renders the one-line bar under the chat and search views.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
)

// State is what the owning view is doing.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateThinking  State = "thinking"
	StateError     State = "error"
	StateHelp      State = "help"
	StateResults   State = "results"
	StateChat      State = "chat"
)

// busy reports whether the state waits on the retriever or the LLM.
func (s State) busy() bool {
	return s == StateSearching || s == StateThinking
}

// Bar shows progress or the outcome of the last action on the left and
// key hints for the current state on the right.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	spin        spinner.Model
	state       State
	message     string
	resultCount int
	degraded    bool
	width       int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(s.Warning)),
		state:  StateReady,
		width:  80,
	}
}

// Update advances the spinner while a busy state lasts. Ticks arriving
// after the work finished are dropped, which stops the animation.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.state.busy() {
		return s, nil
	}
	var cmd tea.Cmd
	s.spin, cmd = s.spin.Update(tick)
	return s, cmd
}

func (s *Bar) View() string {
	left, right := s.status(), s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	switch s.state {
	case StateSearching:
		return s.spin.View() + s.styles.Muted.Render(" Searching the index...")
	case StateThinking:
		return s.spin.View() + s.styles.Muted.Render(" Retrieving sources and drafting an answer...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateHelp:
		return s.styles.Normal.Render("Help")
	case StateChat:
		switch {
		case s.degraded:
			return s.styles.Warning.Render("Fallback answer: the model could not be reached")
		case s.message != "":
			return s.styles.Normal.Render(s.message)
		}
	case StateReady, StateResults:
		if s.resultCount > 0 {
			return s.styles.Normal.Render(fmt.Sprintf("%d results", s.resultCount))
		}
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) hints() string {
	var bindings []key.Binding
	switch {
	case s.state == StateResults && s.resultCount > 0:
		bindings = s.keymap.ResultsHelp()
	case s.state == StateChat || s.state == StateThinking:
		bindings = s.keymap.ChatHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.Help().Key + " " + b.Help().Desc
	}
	return s.styles.Help.Render(strings.Join(parts, " · "))
}

// SetState switches state. Entering a busy state returns the command that
// starts the spinner; the caller must run it.
func (s *Bar) SetState(state State) tea.Cmd {
	wasBusy := s.state.busy()
	s.state = state
	if state.busy() && !wasBusy {
		return s.spin.Tick
	}
	return nil
}

func (s *Bar) State() State { return s.state }

func (s *Bar) SetMessage(message string) { s.message = message }
func (s *Bar) Message() string           { return s.message }

func (s *Bar) SetResultCount(count int) { s.resultCount = count }
func (s *Bar) ResultCount() int         { return s.resultCount }

// SetDegraded flags the last chat answer as the fallback reply.
func (s *Bar) SetDegraded(degraded bool) { s.degraded = degraded }
func (s *Bar) Degraded() bool            { return s.degraded }

func (s *Bar) SetWidth(width int) { s.width = width }
func (s *Bar) Width() int         { return s.width }

// Clear returns to the idle state and forgets the last outcome.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
	s.degraded = false
}
