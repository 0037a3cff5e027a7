package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scout/internal/theme"
)

// Status is the status bar at the bottom.
type Status struct {
	width   int
	theme   *theme.Theme
	mode    string
	file    string
	root    string
	right   string
	flash   string
	flashSv Severity
}

func NewStatus(root string, th *theme.Theme) Status {
	return Status{
		root:  root,
		theme: th,
		mode:  "NORMAL",
	}
}

func (s *Status) SetMode(mode string) {
	s.mode = mode
}

func (s *Status) SetFile(file string) {
	s.file = file
}

func (s *Status) SetWidth(width int) {
	s.width = width
}

// SetRight sets the text shown at the right edge.
func (s *Status) SetRight(text string) {
	s.right = text
}

// Flash shows msg in place of the file name until ClearFlash.
func (s *Status) Flash(sev Severity, msg string) {
	s.flash = msg
	s.flashSv = sev
}

func (s *Status) ClearFlash() {
	s.flash = ""
}

func (s Status) View() string {
	if s.width == 0 {
		return ""
	}
	th := s.theme

	modeColors := map[string]lipgloss.Color{
		"NORMAL":  th.NormalMode,
		"INSERT":  th.InsertMode,
		"VISUAL":  th.VisualMode,
		"COMMAND": th.CmdMode,
		"REPLACE": th.Error,
		"YAZI":    th.Accent,
	}
	color, ok := modeColors[s.mode]
	if !ok {
		color = th.Subtle
	}

	modeStyle := lipgloss.NewStyle().
		Background(color).
		Foreground(th.StatusBg).
		Bold(true).
		Padding(0, 1)
	base := lipgloss.NewStyle().
		Background(th.StatusBg).
		Foreground(th.StatusFg).
		Padding(0, 1)

	mode := modeStyle.Render(s.mode)

	right := ""
	if s.right != "" {
		right = base.Foreground(th.Subtle).Render(s.right)
	}

	avail := s.width - lipgloss.Width(mode) - lipgloss.Width(right) - 3
	if avail < 0 {
		avail = 0
	}

	var middle string
	switch {
	case s.flash != "" && s.flashSv == SeverityError:
		middle = base.Foreground(th.Error).Render(ansi.Truncate(s.flash, avail, "…"))
	case s.flash != "":
		middle = base.Foreground(th.Warning).Render(ansi.Truncate(s.flash, avail, "…"))
	default:
		file := s.file
		if file == "" {
			file = s.root
		}
		if w := ansi.StringWidth(file); w > avail && avail > 1 {
			// Keep the end of long paths.
			file = ansi.TruncateLeft(file, w-avail+1, "…")
		}
		middle = base.Render(file)
	}

	left := fmt.Sprintf("%s %s", mode, middle)

	padLen := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padLen < 0 {
		padLen = 0
	}
	padding := lipgloss.NewStyle().Background(th.StatusBg).Render(strings.Repeat(" ", padLen))

	return left + padding + right
}
