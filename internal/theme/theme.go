// Package theme holds the named color palettes of the UI.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color palette used by all TUI panels.
type Theme struct {
	Name       string
	Accent     lipgloss.Color
	Subtle     lipgloss.Color
	Text       lipgloss.Color
	Dim        lipgloss.Color
	Border     lipgloss.Color
	StatusBg   lipgloss.Color
	StatusFg   lipgloss.Color
	Error      lipgloss.Color
	Warning    lipgloss.Color
	NormalMode lipgloss.Color
	InsertMode lipgloss.Color
	VisualMode lipgloss.Color
	CmdMode    lipgloss.Color
}

// DefaultName is used when the configured theme is unknown.
const DefaultName = "catppuccin"

var themes = map[string]Theme{
	"catppuccin": {
		Name:       "catppuccin",
		Accent:     lipgloss.Color("#cba6f7"),
		Subtle:     lipgloss.Color("#6c7086"),
		Text:       lipgloss.Color("#cdd6f4"),
		Dim:        lipgloss.Color("#585b70"),
		Border:     lipgloss.Color("#45475a"),
		StatusBg:   lipgloss.Color("#313244"),
		StatusFg:   lipgloss.Color("#cdd6f4"),
		Error:      lipgloss.Color("#f38ba8"),
		Warning:    lipgloss.Color("#fab387"),
		NormalMode: lipgloss.Color("#89b4fa"),
		InsertMode: lipgloss.Color("#a6e3a1"),
		VisualMode: lipgloss.Color("#f9e2af"),
		CmdMode:    lipgloss.Color("#f38ba8"),
	},
	"nord": {
		Name:       "nord",
		Accent:     lipgloss.Color("#88c0d0"),
		Subtle:     lipgloss.Color("#4c566a"),
		Text:       lipgloss.Color("#eceff4"),
		Dim:        lipgloss.Color("#434c5e"),
		Border:     lipgloss.Color("#3b4252"),
		StatusBg:   lipgloss.Color("#3b4252"),
		StatusFg:   lipgloss.Color("#eceff4"),
		Error:      lipgloss.Color("#bf616a"),
		Warning:    lipgloss.Color("#d08770"),
		NormalMode: lipgloss.Color("#81a1c1"),
		InsertMode: lipgloss.Color("#a3be8c"),
		VisualMode: lipgloss.Color("#ebcb8b"),
		CmdMode:    lipgloss.Color("#bf616a"),
	},
	"gruvbox": {
		Name:       "gruvbox",
		Accent:     lipgloss.Color("#d79921"),
		Subtle:     lipgloss.Color("#665c54"),
		Text:       lipgloss.Color("#ebdbb2"),
		Dim:        lipgloss.Color("#504945"),
		Border:     lipgloss.Color("#3c3836"),
		StatusBg:   lipgloss.Color("#3c3836"),
		StatusFg:   lipgloss.Color("#ebdbb2"),
		Error:      lipgloss.Color("#fb4934"),
		Warning:    lipgloss.Color("#fe8019"),
		NormalMode: lipgloss.Color("#83a598"),
		InsertMode: lipgloss.Color("#b8bb26"),
		VisualMode: lipgloss.Color("#fabd2f"),
		CmdMode:    lipgloss.Color("#fb4934"),
	},
	"tokyo-night": {
		Name:       "tokyo-night",
		Accent:     lipgloss.Color("#7aa2f7"),
		Subtle:     lipgloss.Color("#565f89"),
		Text:       lipgloss.Color("#c0caf5"),
		Dim:        lipgloss.Color("#414868"),
		Border:     lipgloss.Color("#292e42"),
		StatusBg:   lipgloss.Color("#1f2335"),
		StatusFg:   lipgloss.Color("#c0caf5"),
		Error:      lipgloss.Color("#f7768e"),
		Warning:    lipgloss.Color("#ff9e64"),
		NormalMode: lipgloss.Color("#7aa2f7"),
		InsertMode: lipgloss.Color("#9ece6a"),
		VisualMode: lipgloss.Color("#e0af68"),
		CmdMode:    lipgloss.Color("#f7768e"),
	},
}

// Get returns the theme called name. Unknown names return the default
// theme and false.
func Get(name string) (Theme, bool) {
	if t, ok := themes[name]; ok {
		return t, true
	}
	return themes[DefaultName], false
}

// DefaultTheme returns the default color palette.
func DefaultTheme() Theme {
	return themes[DefaultName]
}

// Names lists the available themes, sorted.
func Names() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
