// Package toggle shows and hides the yazi file manager in a terminal tab.
package toggle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pfassina/scout/internal/chooser"
	"github.com/pfassina/scout/internal/config"
	"github.com/pfassina/scout/internal/focus"
	"github.com/pfassina/scout/internal/layout"
	"github.com/pfassina/scout/internal/resolve"
)

// ErrBusy is returned by Toggle while an earlier Toggle is still running.
var ErrBusy = errors.New("file manager toggle already in progress")

// TerminalName is the title of the file manager tab.
const TerminalName = "Yazi"

// State is the visibility of the file manager.
type State int

const (
	Closed State = iota
	OpenFocused
	OpenUnfocused
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenFocused:
		return "open-focused"
	case OpenUnfocused:
		return "open-unfocused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SettingsLoader returns the current settings. It is called on every open.
type SettingsLoader interface {
	Load() config.Result
}

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Settings SettingsLoader
	Finder   resolve.Finder
	Recorder Recorder
	Logger   *log.Logger
	// GOOS selects the shell dialect; defaults to runtime.GOOS.
	GOOS string
	// ChooserDir holds chooser files; defaults to os.TempDir().
	ChooserDir string
	// Home is the last working directory fallback; defaults to the user's
	// home directory.
	Home string
	// Timeout bounds executable and shell discovery.
	Timeout time.Duration
}

const defaultTimeout = 5 * time.Second

// Controller owns the single file manager session. Its methods must be
// called from the host's event loop.
type Controller struct {
	host     Host
	settings SettingsLoader
	finder   resolve.Finder
	recorder Recorder
	log      *log.Logger
	goos     string
	dir      string
	home     string
	timeout  time.Duration

	busy    atomic.Bool
	tokens  uint64
	current *Session
}

// New returns a controller for host.
func New(host Host, opts Options) *Controller {
	c := &Controller{
		host:     host,
		settings: opts.Settings,
		finder:   opts.Finder,
		recorder: opts.Recorder,
		log:      opts.Logger,
		goos:     opts.GOOS,
		dir:      opts.ChooserDir,
		home:     opts.Home,
		timeout:  opts.Timeout,
	}
	if c.settings == nil {
		c.settings = config.NewLoader("", config.EnvPrefix)
	}
	if c.finder == nil {
		c.finder = resolve.PathFinder{}
	}
	if c.log == nil {
		c.log = log.New(io.Discard)
	}
	if c.home == "" {
		c.home, _ = os.UserHomeDir()
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

// State reports whether the file manager is open and focused. A session
// whose terminal was disposed but has not exited yet counts as closed.
func (c *Controller) State() State {
	if c.current == nil || c.current.closing {
		return Closed
	}
	if c.host.TerminalFocused(c.current.term) {
		return OpenFocused
	}
	return OpenUnfocused
}

// Session returns the live session, or nil when closed.
func (c *Controller) Session() *Session {
	return c.current
}

// Toggle opens the file manager when it is closed, closes it when it has
// focus, and otherwise refocuses or respawns it depending on the
// unfocused_toggle setting. Errors are also reported through the host.
func (c *Controller) Toggle(ctx context.Context) error {
	if !c.busy.CompareAndSwap(false, true) {
		c.host.ShowWarning(ErrBusy.Error())
		return ErrBusy
	}
	defer c.busy.Store(false)

	switch c.State() {
	case Closed:
		if c.current != nil {
			c.log.Debug("reopening before exit", "token", c.current.token)
			c.retire()
		}
		return c.open(ctx)
	case OpenFocused:
		c.close()
		return nil
	}

	res := c.loadSettings()
	if res.Settings.UnfocusedToggle == config.Respawn {
		c.log.Debug("respawning file manager", "token", c.current.token)
		c.retire()
		return c.open(ctx)
	}
	c.host.FocusTerminal(c.current.term)
	return nil
}

func (c *Controller) loadSettings() config.Result {
	res := c.settings.Load()
	if res.Changed {
		for _, w := range res.Warnings {
			c.host.ShowWarning(w)
		}
		c.log.Info("settings loaded", "maximize", res.Settings.Maximize,
			"sidebar", res.Settings.Policies.Sidebar,
			"panel", res.Settings.Policies.Panel,
			"secondary_sidebar", res.Settings.Policies.SecondarySidebar,
			"unfocused_toggle", res.Settings.UnfocusedToggle)
	}
	return res
}

// open spawns a new session. Nothing is left behind when it fails.
func (c *Controller) open(ctx context.Context) error {
	active := c.host.ActiveDocument()
	s := c.loadSettings().Settings

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	exe, warnings, err := resolve.Executable(rctx, c.finder, s.YaziPath, "yazi")
	c.warn(warnings...)
	if err != nil {
		c.log.Error("resolve yazi", "err", err)
		c.host.ShowError(err.Error())
		return err
	}
	configDir, warning := resolve.ConfigDir(s.YaziConfigPath)
	c.warn(warning)
	shell, warning := resolve.FindShell(rctx, c.finder, c.goos)
	c.warn(warning)

	c.tokens++
	sess := &Session{
		token:   c.tokens,
		chooser: chooser.NewPath(c.dir),
		target:  focus.Target{Previous: active},
		dir:     c.workingDir(active),
	}

	args := []string{chooser.Flag, sess.chooser}
	if active != "" {
		args = append(args, active)
	}
	spec := Spec{
		Name:   TerminalName,
		Argv:   shell.Command(exe, args...),
		Dir:    sess.dir,
		OnExit: func() { c.finish(sess) },
	}
	if configDir != "" {
		spec.Env = append(spec.Env, "YAZI_CONFIG_HOME="+configDir)
	}

	sess.restore = layout.Show(c.host, s.Policies, s.Maximize)
	term, err := c.host.OpenTerminal(spec)
	if err != nil {
		layout.Revert(c.host, sess.restore)
		err = fmt.Errorf("open file manager: %w", err)
		c.log.Error("spawn yazi", "err", err)
		c.host.ShowError(err.Error())
		return err
	}
	sess.term = term
	sess.target.Group = term.Group()
	c.current = sess

	c.log.Info("file manager opened", "token", sess.token, "exe", exe, "dir", sess.dir, "chooser", sess.chooser)
	return nil
}

// workingDir picks the directory of the active document, then the first
// workspace root, then the home directory.
func (c *Controller) workingDir(active string) string {
	if active != "" {
		return filepath.Dir(active)
	}
	if roots := c.host.WorkspaceRoots(); len(roots) > 0 {
		return roots[0]
	}
	return c.home
}

// close disposes the terminal. When the group holds other tabs the most
// recently used one is shown first so the pane never flashes empty.
func (c *Controller) close() {
	sess := c.current
	group := sess.term.Group()
	for _, g := range c.host.TabGroups() {
		if g.ID != group || g.Documents+g.Terminals <= 1 {
			continue
		}
		if err := c.host.ShowRecentTab(group); err != nil {
			c.log.Debug("show recent tab", "group", group, "err", err)
		}
	}
	c.log.Debug("closing file manager", "token", sess.token)
	sess.closing = true
	c.host.Dispose(sess.term)
}

// retire tears the current session down ahead of a new one. Its exit
// callback arrives later and only drains its chooser file.
func (c *Controller) retire() {
	sess := c.current
	c.current = nil
	layout.Unshow(c.host, sess.restore)
	if !sess.closing {
		c.host.Dispose(sess.term)
	}
}

// Shutdown tears down a live session when the host exits. The chrome is
// restored right away and the selection, if any, is discarded.
func (c *Controller) Shutdown() {
	if c.current == nil {
		return
	}
	sess := c.current
	c.retire()
	if _, err := chooser.Drain(sess.chooser); err != nil {
		c.log.Debug("chooser file", "path", sess.chooser, "err", err)
	}
	c.log.Info("file manager shut down", "token", sess.token)
}

// finish runs when the terminal of sess is gone.
func (c *Controller) finish(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	live := c.current != nil && c.current.token == sess.token
	if live {
		c.current = nil
		layout.Unshow(c.host, sess.restore)
	}

	paths, err := chooser.Drain(sess.chooser)
	if err != nil {
		c.log.Warn("chooser file", "path", sess.chooser, "err", err)
		c.host.ShowWarning(fmt.Sprintf("could not read file manager selection: %v", err))
	}
	if !live {
		c.log.Debug("superseded session exited", "token", sess.token, "discarded", len(paths))
		return
	}

	opened := c.openSelections(ctx, paths)
	outcome, err := focus.Resolve(ctx, c.host, sess.target, opened > 0)
	if err != nil {
		c.log.Debug("restore focus", "err", err)
	}
	c.log.Info("file manager closed", "token", sess.token, "selected", len(paths), "opened", opened, "focus", outcome)
}

// openSelections opens every chosen path in order and returns how many
// opened. A failure is reported and does not stop the rest.
func (c *Controller) openSelections(ctx context.Context, paths []string) int {
	var opened []string
	for _, p := range paths {
		if err := c.host.OpenDocument(ctx, p, false); err != nil {
			c.log.Error("open selection", "path", p, "err", err)
			c.host.ShowError(fmt.Sprintf("could not open %s: %v", p, err))
			continue
		}
		opened = append(opened, p)
	}
	if c.recorder != nil && len(opened) > 0 {
		if err := c.recorder.Record(opened...); err != nil {
			c.log.Warn("record selection", "err", err)
		}
	}
	return len(opened)
}

func (c *Controller) warn(msgs ...string) {
	for _, m := range msgs {
		if m == "" {
			continue
		}
		c.log.Warn(m)
		c.host.ShowWarning(m)
	}
}
