// Package editor embeds Neovim in a terminal pane and drives it over
// msgpack RPC.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pfassina/scout/internal/terminal"
)

// ErrNotConnected is returned by document operations before RPC is up.
var ErrNotConnected = errors.New("nvim RPC not connected")

type editorStartedMsg struct{ pane *terminal.Pane }

type rpcConnectedMsg struct{ rpc *RPC }

type editorErrorMsg struct{ err error }

// ModeChangedMsg reports a Neovim mode switch.
type ModeChangedMsg struct {
	Mode NvimMode
}

// BufEnterMsg reports that a buffer took focus in Neovim.
type BufEnterMsg struct {
	// Path is the buffer name, empty for unnamed buffers.
	Path string
	// Listed is the number of listed buffers at the time.
	Listed int
}

var sockets atomic.Int64

// Editor is a Bubble Tea model that embeds Neovim in a terminal pane,
// with RPC for programmatic control.
type Editor struct {
	width      int
	height     int
	root       string
	profile    ProfileMode
	socketPath string
	pane       *terminal.Pane
	rpc        *RPC
	started    bool
	mode       NvimMode
	current    string
	listed     int
	err        error
	send       func(tea.Msg)
	log        *log.Logger
}

// New returns an editor rooted at dir. Neovim starts on the first
// WindowSizeMsg.
func New(root string, profile ProfileMode, logger *log.Logger) Editor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return Editor{
		root:    root,
		profile: profile,
		mode:    ModeNormal,
		log:     logger,
	}
}

// SetSender routes RPC events to send, which may block.
func (e *Editor) SetSender(send func(tea.Msg)) {
	e.send = pump(send)
}

// pump forwards messages to send in order without blocking the caller.
// RPC notification handlers run on the connection's read loop, which must
// keep moving while the event loop waits on an RPC reply.
func pump(send func(tea.Msg)) func(tea.Msg) {
	ch := make(chan tea.Msg, 64)
	go func() {
		for msg := range ch {
			send(msg)
		}
	}()
	return func(msg tea.Msg) {
		select {
		case ch <- msg:
		default:
			go func() { ch <- msg }()
		}
	}
}

func (e Editor) Init() tea.Cmd {
	return nil
}

func (e *Editor) start() tea.Cmd {
	width, height := e.width, e.height
	root, profile := e.root, e.profile

	e.socketPath = filepath.Join(os.TempDir(),
		fmt.Sprintf("scout-nvim-%d-%d.sock", os.Getpid(), sockets.Add(1)))
	socket := e.socketPath

	return func() tea.Msg {
		os.Remove(socket) //nolint:errcheck // stale socket from a crashed run

		pane, err := terminal.Start(terminal.Options{
			Argv:   []string{"nvim", "--listen", socket},
			Dir:    root,
			Env:    NvimEnv(profile),
			Width:  width,
			Height: height,
		})
		if err != nil {
			return editorErrorMsg{fmt.Errorf("start nvim: %w", err)}
		}
		return editorStartedMsg{pane: pane}
	}
}

func (e *Editor) connectRPC() tea.Cmd {
	socket, send := e.socketPath, e.send
	return func() tea.Msg {
		rpc, err := ConnectRPC(socket, send)
		if err != nil {
			return editorErrorMsg{err}
		}
		return rpcConnectedMsg{rpc: rpc}
	}
}

// Owns reports whether a terminal message belongs to the Neovim pane.
func (e Editor) Owns(id int) bool {
	return e.pane != nil && e.pane.ID() == id
}

func (e Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		if !e.started {
			e.started = true
			return e, e.start()
		}
		if e.pane != nil {
			e.log.Debug("resize nvim", "width", e.width, "height", e.height)
			if err := e.pane.Resize(e.width, e.height); err != nil {
				e.log.Warn("resize nvim", "err", err)
			}
		}
		return e, nil

	case editorStartedMsg:
		e.pane = msg.pane
		e.log.Info("nvim started", "pid", e.pane.Pid(), "socket", e.socketPath)
		return e, tea.Batch(e.pane.Read, e.connectRPC())

	case rpcConnectedMsg:
		e.rpc = msg.rpc
		e.rpc.ClearHighlightBgs()
		return e, nil

	case editorErrorMsg:
		e.err = msg.err
		e.log.Error("editor", "err", msg.err)
		return e, nil

	case ModeChangedMsg:
		e.mode = msg.Mode
		return e, nil

	case BufEnterMsg:
		e.current = msg.Path
		e.listed = msg.Listed
		return e, nil

	case terminal.OutputMsg:
		if !e.Owns(msg.ID) {
			return e, nil
		}
		e.pane.Feed(msg.Data)
		return e, e.pane.Read

	case terminal.ExitedMsg:
		if !e.Owns(msg.ID) {
			return e, nil
		}
		e.log.Info("nvim exited", "err", msg.Err)
		return e, tea.Quit

	case tea.KeyMsg:
		if e.pane == nil {
			return e, nil
		}
		if err := e.pane.SendKey(msg); err != nil {
			e.log.Warn("write to nvim", "err", err)
		}
		return e, nil
	}

	return e, nil
}

func (e Editor) View() string {
	if e.err != nil {
		return fmt.Sprintf("Editor error: %v", e.err)
	}
	if e.pane == nil {
		return "Starting Neovim..."
	}
	return e.pane.View()
}

// SetFocused shows the cursor only while the editor has focus.
func (e *Editor) SetFocused(focused bool) {
	if e.pane != nil {
		e.pane.SetShowCursor(focused)
	}
}

// Mode returns the current Neovim mode.
func (e Editor) Mode() NvimMode {
	return e.mode
}

// CurrentFile returns the path of the buffer Neovim last entered.
func (e Editor) CurrentFile() string {
	return e.current
}

// Listed returns the number of listed buffers. It asks Neovim when
// connected and falls back to the last BufEnter report.
func (e Editor) Listed() int {
	if e.rpc != nil {
		if n, err := e.rpc.ListedBuffers(); err == nil {
			return n
		}
	}
	return e.listed
}

// GetRPC returns the RPC connection, or nil before it is up.
func (e Editor) GetRPC() *RPC {
	return e.rpc
}

// OpenFile opens path in Neovim. It gives up when ctx is done; the RPC
// call itself cannot be cancelled and finishes in the background.
func (e Editor) OpenFile(ctx context.Context, path string) error {
	if e.rpc == nil {
		return ErrNotConnected
	}
	done := make(chan error, 1)
	go func() { done <- e.rpc.OpenFile(path) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Checktime reloads buffers whose files changed on disk.
func (e Editor) Checktime() {
	if e.rpc == nil {
		return
	}
	if err := e.rpc.Checktime(); err != nil {
		e.log.Debug("checktime", "err", err)
	}
}

// Close quits Neovim and releases the pane.
func (e *Editor) Close() {
	if e.rpc != nil {
		e.rpc.Quit()
		e.rpc.Close() //nolint:errcheck // shutdown
	}
	if e.pane != nil {
		e.pane.Close()
	}
	if e.socketPath != "" {
		os.Remove(e.socketPath) //nolint:errcheck // shutdown
	}
}
