package panel

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scout/internal/theme"
)

// WhichKeyEntry is one key offered at the current leader level.
type WhichKeyEntry struct {
	Key   string
	Label string
	// Group marks a key that opens another level instead of running an
	// action.
	Group bool
}

// WhichKey is the popup listing the keys that continue a leader sequence.
type WhichKey struct {
	entries []WhichKeyEntry
	path    []string
	width   int
	theme   *theme.Theme
}

const (
	whichKeyMaxCols = 3
	whichKeyGap     = 3
)

func NewWhichKey(th *theme.Theme) WhichKey {
	return WhichKey{theme: th}
}

// SetEntries replaces the listed keys. path holds the keys typed so far,
// starting with the leader's display name. Actions sort before groups.
func (w *WhichKey) SetEntries(path []string, entries []WhichKeyEntry) {
	w.path = append([]string(nil), path...)
	w.entries = append([]WhichKeyEntry(nil), entries...)
	sort.SliceStable(w.entries, func(i, j int) bool {
		a, b := w.entries[i], w.entries[j]
		if a.Group != b.Group {
			return !a.Group
		}
		return a.Key < b.Key
	})
}

func (w *WhichKey) SetWidth(width int) {
	w.width = width
}

func (w *WhichKey) Clear() {
	w.entries = nil
	w.path = nil
}

func (w WhichKey) View() string {
	if len(w.entries) == 0 {
		return ""
	}

	width := w.width
	if width == 0 {
		width = 60
	}
	inner := max(width-6, 10)

	th := w.theme
	title := lipgloss.NewStyle().Bold(true).Foreground(th.Accent)
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(th.InsertMode)
	label := lipgloss.NewStyle().Foreground(th.Text)
	group := lipgloss.NewStyle().Foreground(th.Subtle)
	dim := lipgloss.NewStyle().Foreground(th.Dim)

	cells := make([]string, len(w.entries))
	widest := 0
	for i, e := range w.entries {
		text := label.Render(e.Label)
		if e.Group {
			text = group.Render("+" + e.Label)
		}
		cells[i] = keyStyle.Render(e.Key) + " " + text
		widest = max(widest, lipgloss.Width(cells[i]))
	}

	cols := min(whichKeyMaxCols, max(1, (inner+whichKeyGap)/(widest+whichKeyGap)), len(cells))
	colWidth := (inner - (cols-1)*whichKeyGap) / cols
	rows := (len(cells) + cols - 1) / cols

	lines := []string{title.Render(w.heading())}
	for r := 0; r < rows; r++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(cells) {
				break
			}
			cell := ansi.Truncate(cells[i], colWidth, "…")
			b.WriteString(cell)
			if c < cols-1 && i+rows < len(cells) {
				b.WriteString(strings.Repeat(" ", colWidth-lipgloss.Width(cell)+whichKeyGap))
			}
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, dim.Render("esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Accent).
		Padding(0, 1).
		Width(width - 4).
		Render(strings.Join(lines, "\n"))
}

func (w WhichKey) heading() string {
	if len(w.path) == 0 {
		return "Leader"
	}
	return strings.Join(w.path, " › ")
}
