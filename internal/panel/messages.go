package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scout/internal/theme"
)

// Severity of a message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// Message is one line in the messages panel.
type Message struct {
	At       time.Time
	Severity Severity
	Text     string
}

const maxMessages = 200

// Messages is the bottom panel listing notifications, newest last.
type Messages struct {
	width   int
	height  int
	theme   *theme.Theme
	items   []Message
	focused bool
	now     func() time.Time
}

func NewMessages(th *theme.Theme) Messages {
	return Messages{theme: th, now: time.Now}
}

// Add appends a message, dropping the oldest beyond the limit.
func (m *Messages) Add(sev Severity, text string) Message {
	msg := Message{At: m.now(), Severity: sev, Text: text}
	m.items = append(m.items, msg)
	if len(m.items) > maxMessages {
		m.items = m.items[len(m.items)-maxMessages:]
	}
	return msg
}

// Items returns the messages, oldest first.
func (m Messages) Items() []Message {
	return m.items
}

func (m *Messages) Clear() {
	m.items = nil
}

func (m *Messages) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Messages) SetFocused(focused bool) {
	m.focused = focused
}

func (m Messages) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	th := m.theme
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if m.focused {
		titleStyle = titleStyle.Foreground(th.Accent).Underline(true)
	} else {
		titleStyle = titleStyle.Foreground(th.Subtle)
	}
	title := titleStyle.Render(fmt.Sprintf("Messages (%d)", len(m.items)))

	rows := m.height - 1
	if rows < 0 {
		rows = 0
	}
	start := len(m.items) - rows
	if start < 0 {
		start = 0
	}

	styles := map[Severity]lipgloss.Style{
		SeverityInfo:    lipgloss.NewStyle().Foreground(th.Text),
		SeverityWarning: lipgloss.NewStyle().Foreground(th.Warning),
		SeverityError:   lipgloss.NewStyle().Foreground(th.Error),
	}
	dim := lipgloss.NewStyle().Foreground(th.Dim)

	lines := []string{title}
	for _, msg := range m.items[start:] {
		text := strings.ReplaceAll(msg.Text, "\n", " ")
		line := fmt.Sprintf("%s %-7s %s", msg.At.Format("15:04:05"), msg.Severity, text)
		line = ansi.Truncate(line, m.width-2, "…")
		stamp, rest, _ := strings.Cut(line, " ")
		lines = append(lines, " "+dim.Render(stamp)+" "+styles[msg.Severity].Render(rest))
	}
	return strings.Join(lines, "\n")
}
