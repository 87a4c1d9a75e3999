package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pipewrench/internal/adapters/driving/tui/styles"
)

func TestNewPrompt(t *testing.T) {
	p := NewPrompt(styles.DefaultStyles(), "Ask", "Ask a question...")

	require.NotNil(t, p)
	assert.True(t, p.Focused())
	assert.Empty(t, p.Value())
	assert.Equal(t, 50, p.Width())
}

func TestNewPrompt_NilStyles(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	require.NotNil(t, p)
	assert.NotNil(t, p.styles)
}

func TestPrompt_Init(t *testing.T) {
	assert.NotNil(t, NewPrompt(nil, "Ask", "").Init())
}

func TestPrompt_TypingUpdatesValue(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})

	assert.Equal(t, "hi", p.Value())
}

func TestPrompt_SetValueAndReset(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	p.SetValue("what is the escalation path?")
	assert.Equal(t, "what is the escalation path?", p.Value())

	p.Reset()
	assert.Empty(t, p.Value())
}

func TestPrompt_FocusBlur(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	p.Blur()
	assert.False(t, p.Focused())

	p.Focus()
	assert.True(t, p.Focused())
}

func TestPrompt_SetWidth(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		wantInner int
	}{
		{name: "wide", width: 100, wantInner: 89},
		{name: "narrow keeps minimum", width: 10, wantInner: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrompt(nil, "Ask", "")
			p.SetWidth(tt.width)

			assert.Equal(t, tt.width, p.Width())
			assert.Equal(t, tt.wantInner, p.textinput.Width)
		})
	}
}

func TestPrompt_ViewContainsLabel(t *testing.T) {
	p := NewPrompt(nil, "Search", "")

	assert.Contains(t, p.View(), "Search:")
}
