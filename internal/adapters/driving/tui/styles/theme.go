// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette assigns a colour to each role in the interface. Colours adapt to
// light and dark terminals.
type Palette struct {
	Accent  lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Subtle  lipgloss.AdaptiveColor
	Good    lipgloss.AdaptiveColor
	Caution lipgloss.AdaptiveColor
	Bad     lipgloss.AdaptiveColor
	Edge    lipgloss.AdaptiveColor
	Bar     lipgloss.AdaptiveColor
}

// DefaultPalette is a rust and steel scheme.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#B4530E", Dark: "#F28C38"},
		Info:    lipgloss.AdaptiveColor{Light: "#2F5F8A", Dark: "#7FB2DE"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6E1DA"},
		Subtle:  lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8A8F98"},
		Good:    lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#8CCF7E"},
		Caution: lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#E8C468"},
		Bad:     lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F0767B"},
		Edge:    lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#4A4F57"},
		Bar:     lipgloss.AdaptiveColor{Light: "#EAEEF2", Dark: "#23262B"},
	}
}

// Styles are the rendered styles every view draws with.
type Styles struct {
	palette Palette

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Transcript styles.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Citation       lipgloss.Style
}

func NewStyles(p Palette) *Styles {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	rounded := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Edge)

	return &Styles{
		palette: p,

		Title:    fg(p.Accent).Bold(true),
		Subtitle: fg(p.Info).Bold(true),
		Normal:   fg(p.Text),
		Muted:    fg(p.Subtle),
		Selected: fg(p.Bar).Background(p.Accent).Bold(true),
		Error:    fg(p.Bad),
		Success:  fg(p.Good),
		Warning:  fg(p.Caution),
		Help:     fg(p.Subtle),

		InputField: rounded.Padding(0, 1),
		Border:     rounded,
		StatusBar:  fg(p.Subtle).Background(p.Bar).Padding(0, 1),

		UserLabel:      fg(p.Info).Bold(true),
		AssistantLabel: fg(p.Accent).Bold(true),
		Citation:       fg(p.Subtle).Italic(true),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Score colours a similarity score: strong matches green, middling ones
// amber, weak ones muted.
func (s *Styles) Score(score float64) lipgloss.Style {
	switch {
	case score >= strongMatch:
		return lipgloss.NewStyle().Foreground(s.palette.Good)
	case score >= weakMatch:
		return lipgloss.NewStyle().Foreground(s.palette.Caution)
	default:
		return s.Muted
	}
}

const (
	strongMatch = 0.75
	weakMatch   = 0.5
)
