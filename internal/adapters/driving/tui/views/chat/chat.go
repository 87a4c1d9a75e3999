// Package chat provides the conversational view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pipewrench/internal/core/domain"
)

// ErrNoChatService indicates that no chat service was provided.
var ErrNoChatService = errors.New("chat service is required")

// Chatter answers one question. driving.ChatService satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// entry is one rendered line of the conversation.
type entry struct {
	role      domain.Role
	content   string
	citations []domain.Citation
}

// View is the chat view: a scrolling transcript above a question prompt.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	viewport  viewport.Model
	statusbar *status.Bar

	chat   Chatter
	userID string
	ctx    context.Context

	sessionID  string
	fileID     string
	transcript []entry
	pending    bool
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view for the given user.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat Chatter, userID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateChat)

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewPrompt(s, "Ask", "Ask a question about your organisation..."),
		viewport:  viewport.New(80, 14),
		statusbar: bar,
		chat:      chat,
		userID:    userID,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithFile scopes the conversation to one indexed file.
func (v *View) WithFile(fileID string) *View {
	v.fileID = fileID
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChatAnswered:
		v.handleAnswer(msg)
		return v, nil

	case messages.TranscriptLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.LoadSession(msg.SessionID, msg.Messages)
		return v, nil

	case messages.ErrorOccurred:
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

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewChat):
		v.NewConversation()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Send):
		return v, v.send()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// send submits the current prompt. Only one turn is in flight at a time.
func (v *View) send() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending {
		return nil
	}

	v.pending = true
	v.err = nil
	v.input.Reset()
	v.transcript = append(v.transcript, entry{role: domain.RoleUser, content: question})
	spin := v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetDegraded(false)
	v.refresh()

	chat := v.chat
	ctx := v.ctx
	req := domain.ChatRequest{
		Message:   question,
		SessionID: v.sessionID,
		UserID:    v.userID,
		FileID:    v.fileID,
	}
	return tea.Batch(spin, func() tea.Msg {
		if chat == nil {
			return messages.ChatAnswered{Question: question, Err: ErrNoChatService}
		}
		resp, err := chat.Chat(ctx, req)
		return messages.ChatAnswered{Question: question, Response: resp, Err: err}
	})
}

func (v *View) handleAnswer(msg messages.ChatAnswered) {
	v.pending = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Response == nil {
		return
	}

	v.sessionID = msg.Response.SessionID
	v.transcript = append(v.transcript, entry{
		role:      domain.RoleAssistant,
		content:   msg.Response.Answer,
		citations: msg.Response.Sources,
	})

	v.statusbar.SetState(status.StateChat)
	v.statusbar.SetDegraded(msg.Response.Degraded)
	v.statusbar.SetMessage(fmt.Sprintf("%d sources", len(msg.Response.Sources)))
	v.refresh()
}

func (v *View) setError(err error) {
	v.pending = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.refresh()
}

// LoadSession replaces the transcript with a stored conversation so that
// the next question continues it.
func (v *View) LoadSession(sessionID string, msgs []domain.ChatMessage) {
	v.sessionID = sessionID
	v.transcript = v.transcript[:0]
	for _, m := range msgs {
		if m.Role == domain.RoleSystem {
			continue
		}
		v.transcript = append(v.transcript, entry{role: m.Role, content: m.Content, citations: m.Citations})
	}
	v.err = nil
	v.pending = false
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateChat)
	v.refresh()
}

// NewConversation clears the transcript; the next question opens a new session.
func (v *View) NewConversation() {
	v.sessionID = ""
	v.transcript = nil
	v.err = nil
	v.pending = false
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateChat)
	v.refresh()
}

func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 {
		return v.styles.Muted.Render("No messages yet. Ask something to get started.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.transcript))
	for _, e := range v.transcript {
		var b strings.Builder
		if e.role == domain.RoleUser {
			b.WriteString(v.styles.UserLabel.Render("You"))
		} else {
			b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(e.content))
		for i, c := range e.citations {
			b.WriteString("\n")
			b.WriteString(v.styles.Citation.Render(fmt.Sprintf("  [%d] %s (%.2f)", i+1, c.Source, c.Score)))
		}
		blocks = append(blocks, b.String())
	}
	if v.pending {
		blocks = append(blocks, v.styles.Muted.Render("..."))
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Chat"
	if v.fileID != "" {
		title = "Chat: " + v.fileID
	}

	sections := []string{
		v.styles.Title.Render(title),
		"",
		v.styles.Border.Render(v.viewport.View()),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Title, prompt, status bar, spacers and the viewport border
	v.viewport.Width = max(width-2, 20)
	v.viewport.Height = max(height-10, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// SessionID returns the session the conversation is recorded in.
func (v *View) SessionID() string {
	return v.sessionID
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Len returns the number of transcript entries.
func (v *View) Len() int {
	return len(v.transcript)
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Input returns the current prompt text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the prompt text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}
