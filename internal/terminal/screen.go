package terminal

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/vt"
)

type screen struct {
	term       *vt.SafeEmulator
	done       chan struct{}
	showCursor bool
}

// newScreen creates a VT emulator and starts a goroutine that drains
// terminal responses (DA1, DECRQM, etc.) back to the PTY. Without this,
// the emulator's internal io.Pipe blocks on Write when the program sends
// queries.
func newScreen(width, height int, reply io.Writer) *screen {
	term := vt.NewSafeEmulator(width, height)
	done := make(chan struct{})

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := term.Read(buf)
			if n > 0 {
				reply.Write(buf[:n]) //nolint:errcheck // PTY may be closing
			}
			if err != nil {
				return
			}
			select {
			case <-done:
				return
			default:
			}
		}
	}()

	return &screen{term: term, done: done, showCursor: true}
}

func (s *screen) write(p []byte) (int, error) {
	return s.term.Write(p)
}

func (s *screen) resize(width, height int) {
	s.term.Resize(width, height)
}

func (s *screen) render() string {
	rendered := s.term.Render()
	// Render() uses \r\n; Bubble Tea expects \n
	rendered = strings.ReplaceAll(rendered, "\r\n", "\n")
	if s.showCursor {
		pos := s.term.CursorPosition()
		return overlayCursor(rendered, pos.X, pos.Y)
	}
	return rendered
}

func (s *screen) close() error {
	close(s.done)
	return s.term.Close()
}

// overlayCursor inserts a reverse-video block at the cursor position.
func overlayCursor(s string, cx, cy int) string {
	lines := strings.Split(s, "\n")
	if cy < 0 || cy >= len(lines) {
		return s
	}
	lines[cy] = insertCursor(lines[cy], cx)
	return strings.Join(lines, "\n")
}

// insertCursor adds reverse video at visual column col, skipping ANSI escapes.
func insertCursor(line string, col int) string {
	runes := []rune(line)
	vcol := 0
	i := 0

	for i < len(runes) {
		if runes[i] == 0x1b {
			i++
			if i < len(runes) && runes[i] == '[' {
				// CSI: parameters and intermediates, then one final byte.
				i++
				for i < len(runes) && runes[i] >= 0x20 && runes[i] < 0x40 {
					i++
				}
				if i < len(runes) {
					i++
				}
			} else if i < len(runes) {
				i++
			}
			continue
		}

		if vcol == col {
			return string(runes[:i]) + "\x1b[7m" + string(runes[i]) + "\x1b[27m" + string(runes[i+1:])
		}

		vcol++
		i++
	}

	if col < vcol {
		return line
	}
	return line + strings.Repeat(" ", col-vcol) + "\x1b[7m \x1b[27m"
}

var _ io.Reader = (*vt.SafeEmulator)(nil)
