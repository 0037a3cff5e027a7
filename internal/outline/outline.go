// Package outline extracts the heading structure of markdown documents.
package outline

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading represents a markdown heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-based line number
}

// Parser wraps goldmark for heading extraction.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

// Supported reports whether path looks like a markdown document.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return true
	}
	return false
}

// Headings returns the ATX and setext headings of content in document
// order. A leading frontmatter block is skipped.
func (p *Parser) Headings(content []byte) []Heading {
	body, offset := stripFrontmatter(content)
	doc := p.md.Parser().Parse(text.NewReader(body))

	var headings []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) { //nolint:errcheck // walker never fails
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := strings.TrimSpace(plainText(h, body))
		if title == "" {
			return ast.WalkSkipChildren, nil
		}
		line := 0
		if lines := h.Lines(); lines.Len() > 0 {
			line = bytes.Count(body[:lines.At(0).Start], []byte("\n")) + 1
		}
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  title,
			Line:  line + offset,
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(plainText(c, source))
		}
	}
	return b.String()
}

// stripFrontmatter removes a leading --- delimited block and returns the
// rest together with the number of lines removed.
func stripFrontmatter(content []byte) ([]byte, int) {
	first, rest, ok := bytes.Cut(content, []byte("\n"))
	if !ok || string(bytes.TrimSpace(first)) != "---" {
		return content, 0
	}
	skipped := 1
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = bytes.Cut(rest, []byte("\n"))
		skipped++
		if string(bytes.TrimSpace(line)) == "---" {
			return rest, skipped
		}
	}
	// Unterminated: treat the whole file as markdown.
	return content, 0
}
