package editor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neovim/go-client/nvim"
)

// NvimMode represents Neovim's current mode.
type NvimMode string

const (
	ModeNormal  NvimMode = "n"
	ModeInsert  NvimMode = "i"
	ModeVisual  NvimMode = "v"
	ModeVisLine NvimMode = "V"
	ModeVisBlk  NvimMode = "\x16"
	ModeCommand NvimMode = "c"
	ModeReplace NvimMode = "R"
	ModeTermnl  NvimMode = "t"
)

const (
	eventModeChanged = "scout:mode-changed"
	eventBufEnter    = "scout:buf-enter"
)

// RPC manages the Neovim RPC connection.
type RPC struct {
	client *nvim.Nvim
	mu     sync.RWMutex
	mode   NvimMode
	send   func(tea.Msg)
}

// ConnectRPC dials the Neovim socket and subscribes to mode and buffer
// events, which are delivered through send. It retries briefly since
// Neovim may not have the socket ready immediately.
func ConnectRPC(socketPath string, send func(tea.Msg)) (*RPC, error) {
	var client *nvim.Nvim
	var err error

	for i := 0; i < 50; i++ {
		client, err = nvim.Dial(socketPath)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to nvim socket: %w", err)
	}

	if send == nil {
		send = func(tea.Msg) {}
	}
	rpc := &RPC{
		client: client,
		mode:   ModeNormal,
		send:   send,
	}

	if err := rpc.setupEvents(); err != nil {
		return nil, errors.Join(fmt.Errorf("setup nvim events: %w", err), client.Close())
	}

	return rpc, nil
}

func (r *RPC) setupEvents() error {
	if err := r.client.RegisterHandler(eventModeChanged, func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		newMode, ok := args[0].(string)
		if !ok {
			return
		}

		r.mu.Lock()
		r.mode = NvimMode(newMode)
		r.mu.Unlock()

		r.send(ModeChangedMsg{Mode: NvimMode(newMode)})
	}); err != nil {
		return err
	}

	if err := r.client.RegisterHandler(eventBufEnter, func(args ...interface{}) {
		if len(args) < 2 {
			return
		}
		path, _ := args[0].(string)
		r.send(BufEnterMsg{Path: path, Listed: toInt(args[1])})
	}); err != nil {
		return err
	}

	for _, ev := range []string{eventModeChanged, eventBufEnter} {
		if err := r.client.Subscribe(ev); err != nil {
			return err
		}
	}

	cid := r.client.ChannelID()
	lua := fmt.Sprintf(`
local chan = %d
local group = vim.api.nvim_create_augroup('ScoutEvents', {clear=true})

vim.api.nvim_create_autocmd('ModeChanged', {
  group = group,
  callback = function()
    vim.rpcnotify(chan, '%s', vim.v.event.new_mode)
  end,
})

vim.api.nvim_create_autocmd({'BufEnter', 'BufDelete'}, {
  group = group,
  callback = function(args)
    vim.schedule(function()
      local listed = #vim.fn.getbufinfo({buflisted = 1})
      vim.rpcnotify(chan, '%s', vim.api.nvim_buf_get_name(0), listed)
    end)
  end,
})
`, cid, eventModeChanged, eventBufEnter)

	return r.client.ExecLua(lua, nil)
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Mode returns the current Neovim mode.
func (r *RPC) Mode() NvimMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// OpenFile opens a file in Neovim.
func (r *RPC) OpenFile(path string) error {
	return r.client.ExecLua("vim.cmd('edit ' .. vim.fn.fnameescape(...))", nil, path)
}

// CurrentFile returns the current buffer's file path. Unnamed buffers
// return an empty string.
func (r *RPC) CurrentFile() (string, error) {
	buf, err := r.client.CurrentBuffer()
	if err != nil {
		return "", err
	}
	return r.client.BufferName(buf)
}

// ListedBuffers returns how many listed buffers Neovim holds.
func (r *RPC) ListedBuffers() (int, error) {
	var n int
	if err := r.client.ExecLua("return #vim.fn.getbufinfo({buflisted = 1})", &n); err != nil {
		return 0, err
	}
	return n, nil
}

// BufferContent returns all lines of the current buffer.
func (r *RPC) BufferContent() ([][]byte, error) {
	buf, err := r.client.CurrentBuffer()
	if err != nil {
		return nil, err
	}
	return r.client.BufferLines(buf, 0, -1, false)
}

// ExecCommand runs an Ex command in Neovim.
func (r *RPC) ExecCommand(cmd string) error {
	return r.client.Command(cmd)
}

// Checktime asks Neovim to reload buffers changed on disk.
func (r *RPC) Checktime() error {
	return r.client.Command("silent! checktime")
}

// Quit tells Neovim to exit.
func (r *RPC) Quit() {
	if r.client == nil {
		return
	}
	// Neovim may close the connection mid-command.
	r.client.Command("qa!") //nolint:errcheck // shutdown
}

// ClearHighlightBgs clears explicit backgrounds on common highlight groups
// so Neovim uses the terminal default, preserving terminal transparency.
func (r *RPC) ClearHighlightBgs() {
	for _, g := range []string{"Normal", "NonText", "EndOfBuffer", "FoldColumn", "SignColumn", "NormalNC"} {
		r.ExecCommand("hi " + g + " guibg=NONE") //nolint:errcheck // cosmetic; group may not exist
	}
}

// Close closes the RPC connection.
func (r *RPC) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
