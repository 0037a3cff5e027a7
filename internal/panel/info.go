package panel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/gabriel-vasile/mimetype"

	"github.com/pfassina/scout/internal/history"
	"github.com/pfassina/scout/internal/outline"
	"github.com/pfassina/scout/internal/theme"
)

// DocInfo describes the active document.
type DocInfo struct {
	Path string
	Mime string
	Size int64
}

// Describe stats and sniffs path.
func Describe(path string) (DocInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DocInfo{}, err
	}
	if info.IsDir() {
		return DocInfo{Path: path, Mime: "inode/directory"}, nil
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return DocInfo{}, fmt.Errorf("detect type of %s: %w", path, err)
	}
	return DocInfo{Path: path, Mime: mt.String(), Size: info.Size()}, nil
}

// Info is the secondary sidebar: document details, outline and the
// documents recently picked in the file manager.
type Info struct {
	width   int
	height  int
	root    string
	theme   *theme.Theme
	doc     DocInfo
	outline []outline.Heading
	recent  []history.Entry
	focused bool
}

func NewInfo(root string, th *theme.Theme) Info {
	return Info{root: root, theme: th}
}

func (i *Info) SetDocument(doc DocInfo) {
	i.doc = doc
}

func (i *Info) SetOutline(headings []outline.Heading) {
	i.outline = headings
}

func (i *Info) SetRecent(entries []history.Entry) {
	i.recent = entries
}

func (i *Info) Clear() {
	i.doc = DocInfo{}
	i.outline = nil
}

func (i *Info) SetSize(width, height int) {
	i.width = width
	i.height = height
}

func (i *Info) SetFocused(focused bool) {
	i.focused = focused
}

func (i Info) rel(path string) string {
	if rel, err := filepath.Rel(i.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (i Info) View() string {
	if i.width == 0 || i.height == 0 {
		return ""
	}

	th := i.theme
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(th.Subtle)
	inner := i.width - 2

	var lines []string
	section := func(title string, body []string, empty string) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, titleStyle.Render(title))
		if len(body) == 0 {
			lines = append(lines, " "+dim.Render(empty))
			return
		}
		for _, l := range body {
			lines = append(lines, " "+ansi.Truncate(l, inner-1, "…"))
		}
	}

	var doc []string
	if i.doc.Path != "" {
		doc = append(doc, i.rel(i.doc.Path))
		meta := i.doc.Mime
		if i.doc.Size > 0 {
			meta += "  " + humanSize(i.doc.Size)
		}
		doc = append(doc, dim.Render(meta))
	}
	section("Document", doc, "No document")

	var heads []string
	for _, h := range i.outline {
		heads = append(heads, strings.Repeat("  ", h.Level-1)+h.Text)
	}
	section("Outline", heads, "No headings")

	var recent []string
	for _, e := range i.recent {
		recent = append(recent, i.rel(e.Path))
	}
	section("Recent", recent, "Nothing picked yet")

	if len(lines) > i.height {
		lines = lines[:i.height]
	}
	return strings.Join(lines, "\n")
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
