package panel

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scout/internal/theme"
	"github.com/pfassina/scout/internal/workspace"
)

// FileSelectedMsg is sent when a file is selected in the tree.
type FileSelectedMsg struct {
	Path string // absolute
}

// ToggleFileManagerMsg asks the app to toggle the file manager.
type ToggleFileManagerMsg struct{}

// Tree is the file tree panel.
type Tree struct {
	ws         *workspace.Workspace
	theme      *theme.Theme
	allEntries []workspace.Entry
	entries    []workspace.Entry
	collapsed  map[string]bool
	cursor     int
	offset     int
	width      int
	height     int
	focused    bool
	showHelp   bool
	err        error
}

func NewTree(ws *workspace.Workspace, th *theme.Theme) Tree {
	return Tree{
		ws:        ws,
		theme:     th,
		collapsed: make(map[string]bool),
	}
}

// Refresh re-reads the workspace, keeping the cursor on the same entry
// when it still exists.
func (t *Tree) Refresh() {
	selected := t.Selected()
	entries, err := t.ws.ListEntries()
	t.err = err
	t.allEntries = entries
	t.rebuildVisible()
	if selected != "" {
		t.Reveal(filepath.Join(t.ws.Root, selected))
	}
}

// rebuildVisible filters allEntries based on collapsed state.
func (t *Tree) rebuildVisible() {
	t.entries = t.entries[:0]
	for _, e := range t.allEntries {
		if t.isHiddenByCollapse(e.Path) {
			continue
		}
		t.entries = append(t.entries, e)
	}
	if t.cursor >= len(t.entries) {
		t.cursor = len(t.entries) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.clampOffset()
}

// isHiddenByCollapse checks if any ancestor directory of path is collapsed.
func (t *Tree) isHiddenByCollapse(path string) bool {
	dir := filepath.Dir(path)
	for dir != "." {
		if t.collapsed[dir] {
			return true
		}
		dir = filepath.Dir(dir)
	}
	return false
}

func (t *Tree) listHeight() int {
	h := t.height - 2 // title + bottom padding
	if h < 1 {
		h = 1
	}
	return h
}

func (t *Tree) clampOffset() {
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor-t.offset >= t.listHeight() {
		t.offset = t.cursor - t.listHeight() + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// Selected returns the relative path under the cursor.
func (t Tree) Selected() string {
	if t.cursor < len(t.entries) {
		return t.entries[t.cursor].Path
	}
	return ""
}

// Reveal expands the ancestors of abs and moves the cursor onto it.
// Paths outside the workspace are ignored.
func (t *Tree) Reveal(abs string) {
	rel, err := filepath.Rel(t.ws.Root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	expanded := false
	for dir := filepath.Dir(rel); dir != "."; dir = filepath.Dir(dir) {
		if t.collapsed[dir] {
			delete(t.collapsed, dir)
			expanded = true
		}
	}
	if expanded {
		t.rebuildVisible()
	}
	for i, e := range t.entries {
		if e.Path == rel {
			t.cursor = i
			t.clampOffset()
			return
		}
	}
}

func (t Tree) Init() tea.Cmd {
	return nil
}

func (t Tree) Update(msg tea.Msg) (Tree, tea.Cmd) {
	if !t.focused {
		return t, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// When help is shown, any key dismisses it
		if t.showHelp {
			t.showHelp = false
			return t, nil
		}

		switch msg.String() {
		case "j", "down":
			if t.cursor < len(t.entries)-1 {
				t.cursor++
				t.clampOffset()
			}
		case "k", "up":
			if t.cursor > 0 {
				t.cursor--
				t.clampOffset()
			}
		case "enter", "l":
			if t.cursor < len(t.entries) {
				entry := t.entries[t.cursor]
				if entry.IsDir {
					t.collapsed[entry.Path] = !t.collapsed[entry.Path]
					t.rebuildVisible()
				} else {
					path := filepath.Join(t.ws.Root, entry.Path)
					return t, func() tea.Msg {
						return FileSelectedMsg{Path: path}
					}
				}
			}
		case "h":
			if t.cursor < len(t.entries) {
				entry := t.entries[t.cursor]
				if entry.IsDir && !t.collapsed[entry.Path] {
					t.collapsed[entry.Path] = true
					t.rebuildVisible()
				} else if parent := filepath.Dir(entry.Path); parent != "." {
					t.collapsed[parent] = true
					t.rebuildVisible()
					t.Reveal(filepath.Join(t.ws.Root, parent))
				}
			}
		case "G":
			if len(t.entries) == 0 {
				break
			}
			t.cursor = len(t.entries) - 1
			t.clampOffset()
		case "g":
			t.cursor = 0
			t.offset = 0
		case "r":
			t.Refresh()
		case "e":
			return t, func() tea.Msg { return ToggleFileManagerMsg{} }
		case "?":
			t.showHelp = !t.showHelp
		}
	}

	return t, nil
}

func (t Tree) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	th := t.theme
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if t.focused {
		titleStyle = titleStyle.Foreground(th.Accent).Underline(true)
	} else {
		titleStyle = titleStyle.Foreground(th.Subtle)
	}

	var b strings.Builder

	// Title row with optional ? hint
	title := titleStyle.Render(filepath.Base(t.ws.Root))
	if t.focused && !t.showHelp {
		hint := lipgloss.NewStyle().Foreground(th.Dim).Render("?")
		gap := t.width - 2 - lipgloss.Width(title) - lipgloss.Width(hint)
		b.WriteString(title)
		if gap > 0 {
			b.WriteString(strings.Repeat(" ", gap))
			b.WriteString(hint)
		}
	} else {
		b.WriteString(title)
	}
	b.WriteByte('\n')

	if t.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(th.Error).Padding(0, 1)
		b.WriteString(errStyle.Render(ansi.Truncate(t.err.Error(), t.width-4, "…")))
		b.WriteByte('\n')
	}

	viewHeight := t.listHeight()
	if t.showHelp {
		viewHeight -= len(treeHelp) + 2
		if viewHeight < 0 {
			viewHeight = 0
		}
	}

	cursorStyle := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	dirStyle := lipgloss.NewStyle().Foreground(th.Text).Bold(true)
	for i := t.offset; i < len(t.entries) && i-t.offset < viewHeight; i++ {
		entry := t.entries[i]
		indent := strings.Repeat("  ", entry.Depth)
		icon := "  "
		if entry.IsDir {
			if t.collapsed[entry.Path] {
				icon = "▸ "
			} else {
				icon = "▾ "
			}
		}

		line := ansi.Truncate(indent+icon+entry.Name, t.width-2, "…")
		if pad := t.width - 2 - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}

		switch {
		case i == t.cursor && t.focused:
			b.WriteString(cursorStyle.Render(line))
		case entry.IsDir:
			b.WriteString(dirStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}

	if t.showHelp {
		b.WriteString(t.renderHelp())
	}

	return b.String()
}

var treeHelp = []struct{ k, v string }{
	{"j/k", "Navigate"},
	{"enter", "Open / Toggle dir"},
	{"h", "Collapse"},
	{"e", "File manager"},
	{"r", "Refresh"},
	{"g/G", "Top / Bottom"},
	{"?", "Toggle help"},
}

func (t Tree) renderHelp() string {
	dim := lipgloss.NewStyle().Foreground(t.theme.Subtle)
	key := lipgloss.NewStyle().Foreground(t.theme.Accent).Bold(true)
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.theme.Border).
		Padding(0, 1).
		Width(t.width - 6)

	var sb strings.Builder
	for _, l := range treeHelp {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", key.Render(fmt.Sprintf("%-5s", l.k)), dim.Render(l.v)))
	}

	return border.Render(strings.TrimRight(sb.String(), "\n"))
}

func (t *Tree) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.clampOffset()
}

func (t *Tree) SetFocused(focused bool) {
	t.focused = focused
}

func (t Tree) ShowingHelp() bool {
	return t.showHelp
}
