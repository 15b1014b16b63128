// Package styles holds the lipgloss styles shared by the CLI output and the
// chat REPL. Styles are package globals rebuilt by SetTheme.
package styles

import (
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of semantic colors a theme provides. A zero Palette
// renders without color.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

const DefaultTheme = "tokyo-night"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    "#7aa2f7",
		Secondary:  "#bb9af7",
		Foreground: "#c0caf5",
		Muted:      "#565f89",
		Success:    "#9ece6a",
		Warning:    "#e0af68",
		Error:      "#f7768e",
	},
	"gruvbox": {
		Primary:    "#83a598",
		Secondary:  "#d3869b",
		Foreground: "#ebdbb2",
		Muted:      "#665c54",
		Success:    "#b8bb26",
		Warning:    "#fabd2f",
		Error:      "#fb4934",
	},
	"plain": {},
}

// Themes lists the built-in theme names in sorted order.
func Themes() []string {
	return slices.Sorted(maps.Keys(themes))
}

// Theme looks up a built-in palette by name.
func Theme(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

var (
	HeaderStyle  lipgloss.Style
	DividerStyle lipgloss.Style
	MutedStyle   lipgloss.Style
	PromptStyle  lipgloss.Style

	UserStyle      lipgloss.Style
	AssistantStyle lipgloss.Style
	SystemStyle    lipgloss.Style

	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
)

// SetTheme rebuilds every style from p. It is not safe to call while
// another goroutine renders.
func SetTheme(p Palette) {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	HeaderStyle = fg(p.Primary).Bold(true)
	DividerStyle = fg(p.Muted)
	MutedStyle = fg(p.Muted)
	PromptStyle = fg(p.Primary).Bold(true)

	UserStyle = fg(p.Foreground)
	AssistantStyle = fg(p.Secondary)
	SystemStyle = fg(p.Warning).Italic(true)

	SuccessStyle = fg(p.Success)
	WarningStyle = fg(p.Warning)
	ErrorStyle = fg(p.Error)
}

//nolint:gochecknoinits
func init() {
	SetTheme(themes[DefaultTheme])
}
