// Package terminal runs a program in a pseudo-terminal and renders its
// screen for Bubble Tea.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/creack/pty"
)

// OutputMsg carries bytes read from a pane's PTY.
type OutputMsg struct {
	ID   int
	Data []byte
}

// ExitedMsg is delivered once the pane's process is gone.
type ExitedMsg struct {
	ID  int
	Err error
}

// Options describes the process to start.
type Options struct {
	Argv   []string
	Dir    string
	Env    []string
	Width  int
	Height int
}

var ids atomic.Int64

// Pane is a process attached to a PTY plus the emulated screen it draws on.
type Pane struct {
	id     int
	cmd    *exec.Cmd
	file   *os.File
	screen *screen

	closeOnce sync.Once
	waitOnce  sync.Once
	waitErr   error
}

// Start launches opts.Argv in a new PTY of the given size.
func Start(opts Options) (*Pane, error) {
	if len(opts.Argv) == 0 {
		return nil, errors.New("start terminal: empty command")
	}
	width, height := clampSize(opts.Width, opts.Height)

	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, opts.Env...)

	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(height),
		Cols: uint16(width),
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Argv[0], err)
	}

	return &Pane{
		id:     int(ids.Add(1)),
		cmd:    cmd,
		file:   f,
		screen: newScreen(width, height, f),
	}, nil
}

// ID identifies the pane in OutputMsg and ExitedMsg.
func (p *Pane) ID() int { return p.id }

// Pid returns the process id of the program.
func (p *Pane) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Read blocks until the PTY produces output or closes. It is a tea.Cmd;
// callers feed OutputMsg back into the pane and schedule Read again.
func (p *Pane) Read() tea.Msg {
	buf := make([]byte, 32*1024)
	n, err := p.file.Read(buf)
	if n > 0 {
		return OutputMsg{ID: p.id, Data: buf[:n]}
	}
	if err != nil {
		return ExitedMsg{ID: p.id, Err: p.wait()}
	}
	return OutputMsg{ID: p.id}
}

func (p *Pane) wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}

// Feed writes program output onto the screen.
func (p *Pane) Feed(data []byte) {
	p.screen.write(data) //nolint:errcheck // emulator write only fails once closed
}

// Write sends raw input to the program.
func (p *Pane) Write(b []byte) error {
	_, err := p.file.Write(b)
	return err
}

// SendKey encodes a key press and sends it to the program.
func (p *Pane) SendKey(msg tea.KeyMsg) error {
	raw := KeyBytes(msg)
	if raw == nil {
		return nil
	}
	return p.Write(raw)
}

// Resize changes the PTY and screen size.
func (p *Pane) Resize(width, height int) error {
	width, height = clampSize(width, height)
	p.screen.resize(width, height)
	return pty.Setsize(p.file, &pty.Winsize{
		Rows: uint16(height),
		Cols: uint16(width),
	})
}

// SetShowCursor controls whether View draws the cursor block.
func (p *Pane) SetShowCursor(show bool) {
	p.screen.showCursor = show
}

// View renders the current screen.
func (p *Pane) View() string {
	return p.screen.render()
}

// Close kills the program and releases the PTY. The pending Read returns
// an ExitedMsg afterwards. Close is safe to call more than once.
func (p *Pane) Close() {
	p.closeOnce.Do(func() {
		if p.cmd.Process != nil {
			p.cmd.Process.Kill() //nolint:errcheck // process may already be gone
		}
		p.file.Close()   //nolint:errcheck // shutdown
		p.screen.close() //nolint:errcheck // shutdown
	})
}

func clampSize(width, height int) (int, int) {
	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 24
	}
	return width, height
}
