package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"

	"github.com/pfassina/scout/internal/config"
	"github.com/pfassina/scout/internal/editor"
	"github.com/pfassina/scout/internal/history"
	"github.com/pfassina/scout/internal/layout"
	"github.com/pfassina/scout/internal/logging"
	"github.com/pfassina/scout/internal/outline"
	"github.com/pfassina/scout/internal/panel"
	"github.com/pfassina/scout/internal/state"
	"github.com/pfassina/scout/internal/terminal"
	"github.com/pfassina/scout/internal/theme"
	"github.com/pfassina/scout/internal/toggle"
	"github.com/pfassina/scout/internal/workspace"
)

type focusedPanel int

const (
	focusEditor focusedPanel = iota
	focusTree
	focusInfo
)

const (
	recentLimit   = 10
	flashDuration = 4 * time.Second
	openTimeout   = 5 * time.Second
)

type App struct {
	cfg      config.Config
	log      *log.Logger
	editor   editor.Editor
	tree     panel.Tree
	info     panel.Info
	messages panel.Messages
	status   panel.Status
	whichKey panel.WhichKey
	ws       *workspace.Workspace
	watcher  *workspace.Watcher
	history  *history.DB
	store    *state.Store
	outline  *outline.Parser
	theme    theme.Theme
	ctl      *toggle.Controller
	width    int
	height   int
	focused  focusedPanel

	showTree  bool
	showInfo  bool
	showPanel bool
	zenMode   bool
	maximized bool

	treeWidth   int
	infoWidth   int
	panelHeight int

	// Terminal tabs in the document area, keyed by pane ID. active is the
	// one on screen; nil shows the editor.
	terms  map[int]*termTab
	active *termTab

	// Leader key system
	bindings map[string]*Binding
	leader   LeaderState

	// events carries messages from background goroutines into Update.
	events chan tea.Msg
	done   chan struct{}
	// pending collects commands queued by host callbacks during Update.
	pending []tea.Cmd

	// docPath is the absolute path described in the info sidebar.
	docPath  string
	flashSeq int
	initErr  error

	closeOnce sync.Once
}

// New builds the app for cfg. Nothing is spawned until Init and the first
// WindowSizeMsg.
func New(cfg config.Config, logger *log.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	th, themeOK := theme.Get(cfg.Theme)

	a := &App{
		cfg:         cfg,
		log:         logger,
		theme:       th,
		outline:     outline.NewParser(),
		focused:     focusEditor,
		terms:       make(map[int]*termTab),
		events:      make(chan tea.Msg, 64),
		done:        make(chan struct{}),
		treeWidth:   cfg.TreeWidth,
		infoWidth:   cfg.InfoWidth,
		panelHeight: cfg.PanelHeight,
	}
	a.messages = panel.NewMessages(&a.theme)
	a.status = panel.NewStatus(cfg.Workspace, &a.theme)
	a.whichKey = panel.NewWhichKey(&a.theme)
	a.info = panel.NewInfo(cfg.Workspace, &a.theme)

	if !themeOK {
		a.messages.Add(panel.SeverityWarning,
			fmt.Sprintf("unknown theme %q, using %s", cfg.Theme, theme.DefaultName))
	}

	stateDir := config.StateDir()
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		a.messages.Add(panel.SeverityWarning, fmt.Sprintf("state directory: %v", err))
	}

	a.store = state.NewStore(filepath.Join(stateDir, "state.json"))
	st, err := a.store.Load()
	if err != nil {
		a.messages.Add(panel.SeverityWarning, err.Error())
	}
	a.showTree, a.showInfo, a.showPanel = st.ShowTree, st.ShowInfo, st.ShowPanel
	if st.TreeWidth > 0 {
		a.treeWidth = st.TreeWidth
	}
	if st.InfoWidth > 0 {
		a.infoWidth = st.InfoWidth
	}
	if st.PanelHeight > 0 {
		a.panelHeight = st.PanelHeight
	}

	ws, err := workspace.New(cfg.Workspace, cfg.Ignore)
	if err != nil {
		a.messages.Add(panel.SeverityError, err.Error())
		ws, _ = workspace.New(cfg.Workspace, nil)
	}
	if info, err := os.Stat(cfg.Workspace); err != nil || !info.IsDir() {
		a.initErr = fmt.Errorf("workspace %s is not a directory", cfg.Workspace)
	}
	a.ws = ws
	a.tree = panel.NewTree(ws, &a.theme)
	a.tree.Refresh()

	db, err := history.Open(filepath.Join(stateDir, "history.db"))
	if err != nil {
		a.messages.Add(panel.SeverityWarning, fmt.Sprintf("history unavailable: %v", err))
	} else {
		a.history = db
	}

	a.editor = editor.New(cfg.Workspace, editor.ProfileMode(cfg.NvimMode), logger.WithPrefix("nvim"))
	a.editor.SetSender(a.send)

	a.ctl = toggle.New(a, toggle.Options{
		Recorder: a,
		Logger:   logger.WithPrefix("yazi"),
	})

	a.initLeader()
	a.refreshRecent()
	a.setFocus(focusEditor)
	return a
}

// send delivers msg to Update from any goroutine. It gives up once the
// app is closed.
func (a *App) send(msg tea.Msg) {
	select {
	case a.events <- msg:
	case <-a.done:
	}
}

func (a *App) waitForEvent() tea.Msg {
	select {
	case msg := <-a.events:
		return eventMsg{msg: msg}
	case <-a.done:
		return nil
	}
}

func (a *App) Init() tea.Cmd {
	if a.initErr != nil {
		return fatalCmd(a.initErr)
	}
	cmds := []tea.Cmd{a.editor.Init(), a.waitForEvent}

	w, err := workspace.NewWatcher(a.ws, a.log.WithPrefix("watch"), func(paths []string) {
		a.send(workspaceChangedMsg{paths: paths})
	})
	if err != nil {
		a.notify(panel.SeverityWarning, fmt.Sprintf("file watcher unavailable: %v", err))
	} else {
		a.watcher = w
		go w.Start()
	}
	return a.flush(tea.Batch(cmds...))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.syncStatus()
	return a, a.flush(cmd)
}

// flush appends the queued commands to cmd.
func (a *App) flush(cmd tea.Cmd) tea.Cmd {
	if len(a.pending) == 0 {
		return cmd
	}
	cmds := append(a.pending, cmd)
	a.pending = nil
	return tea.Batch(cmds...)
}

func (a *App) queue(cmd tea.Cmd) {
	if cmd != nil {
		a.pending = append(a.pending, cmd)
	}
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case eventMsg:
		return tea.Batch(a.update(msg.msg), a.waitForEvent)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case leaderTimeoutMsg:
		a.handleLeaderTimeout()
		a.updateWhichKey()
		return nil

	case clearFlashMsg:
		if msg.seq == a.flashSeq {
			a.status.ClearFlash()
		}
		return nil

	case tea.WindowSizeMsg:
		// Some terminals send transient 0x0 sizes during live resizes; ignore them.
		if msg.Width <= 0 || msg.Height <= 0 {
			return nil
		}
		a.width = msg.Width
		a.height = msg.Height

		minW, minH := a.minWindowSize()
		if a.width < minW || a.height < minH {
			return tea.ClearScreen
		}
		a.updateLayout()
		return tea.ClearScreen

	case editor.ModeChangedMsg:
		a.editor, _ = a.editor.Update(msg)
		if msg.Mode != editor.ModeNormal {
			a.cancelLeader()
			a.updateWhichKey()
		}
		return nil

	case editor.BufEnterMsg:
		a.editor, _ = a.editor.Update(msg)
		a.refreshDocument(a.absPath(msg.Path))
		return nil

	case panel.FileSelectedMsg:
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		if err := a.OpenDocument(ctx, msg.Path, false); err != nil {
			a.ShowError(fmt.Sprintf("could not open %s: %v", a.rel(msg.Path), err))
		}
		return nil

	case panel.ToggleFileManagerMsg:
		a.toggleFileManager()
		return nil

	case workspaceChangedMsg:
		a.workspaceChanged(msg.paths)
		return nil

	case terminal.OutputMsg:
		if a.editor.Owns(msg.ID) {
			break
		}
		t, ok := a.terms[msg.ID]
		if !ok {
			return nil
		}
		t.pane.Feed(msg.Data)
		return t.pane.Read

	case terminal.ExitedMsg:
		if a.editor.Owns(msg.ID) {
			break
		}
		a.terminalExited(msg)
		return nil
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == a.cfg.ToggleKey {
		a.cancelLeader()
		a.updateWhichKey()
		a.toggleFileManager()
		return nil
	}

	// A focused terminal gets every key except the toggle and panel moves.
	if t := a.focusedTerminal(); t != nil {
		switch key {
		case "ctrl+h":
			a.focusLeft()
		case "ctrl+l":
			a.focusRight()
		default:
			if err := t.pane.SendKey(msg); err != nil {
				a.log.Warn("write to terminal", "name", t.name, "err", err)
			}
		}
		return nil
	}

	if key == "ctrl+c" {
		a.Close()
		return tea.Quit
	}

	// Ctrl+h/l to switch panel focus
	switch key {
	case "ctrl+h":
		a.focusLeft()
		return nil
	case "ctrl+l":
		a.focusRight()
		return nil
	}

	if key == "esc" && a.leader.active {
		a.cancelLeader()
		a.updateWhichKey()
		return nil
	}

	// Escape returns from side panels to editor (unless tree help is showing)
	if key == "esc" && (a.focused == focusTree || a.focused == focusInfo) {
		if a.focused != focusTree || !a.tree.ShowingHelp() {
			a.setFocus(focusEditor)
			return nil
		}
	}

	// Skip the leader when tree help is showing so any key dismisses help first
	if a.focused != focusTree || !a.tree.ShowingHelp() {
		if consumed, cmd := a.handleLeaderKey(key); consumed {
			a.updateWhichKey()
			return cmd
		}
	}

	var cmd tea.Cmd
	switch a.focused {
	case focusTree:
		a.tree, cmd = a.tree.Update(msg)
	case focusInfo:
		// read-only
	default:
		a.editor, cmd = a.editor.Update(msg)
	}
	return cmd
}

func (a *App) toggleFileManager() {
	if err := a.ctl.Toggle(context.Background()); err != nil {
		a.log.Debug("toggle file manager", "err", err)
	}
}

// workspaceChanged refreshes everything that mirrors files on disk.
func (a *App) workspaceChanged(paths []string) {
	a.tree.Refresh()
	a.editor.Checktime()

	removed := false
	for _, p := range paths {
		if p == a.docPath {
			a.refreshDocument(a.docPath)
		}
		if a.history == nil {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			if err := a.history.Remove(p); err != nil {
				a.log.Warn("forget removed file", "path", p, "err", err)
			}
			removed = true
		}
	}
	if removed {
		a.refreshRecent()
	}
}

// refreshDocument describes path in the info sidebar and status bar.
func (a *App) refreshDocument(path string) {
	a.docPath = path
	if path == "" {
		a.info.Clear()
		a.status.SetFile("")
		return
	}
	a.status.SetFile(a.rel(path))

	doc, err := panel.Describe(path)
	if err != nil {
		a.log.Debug("describe document", "path", path, "err", err)
		a.info.Clear()
		return
	}
	a.info.SetDocument(doc)

	if !outline.Supported(path) {
		a.info.SetOutline(nil)
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		a.log.Debug("read outline", "path", path, "err", err)
		a.info.SetOutline(nil)
		return
	}
	a.info.SetOutline(a.outline.Headings(content))
}

func (a *App) refreshRecent() {
	if a.history == nil {
		return
	}
	entries, err := a.history.Recent(recentLimit)
	if err != nil {
		a.log.Warn("load recent selections", "err", err)
		return
	}
	a.info.SetRecent(entries)
}

// Record remembers paths picked in the file manager.
func (a *App) Record(paths ...string) error {
	if a.history == nil {
		return nil
	}
	if err := a.history.Record(paths...); err != nil {
		return err
	}
	a.refreshRecent()
	return nil
}

// notify adds a message to the panel and flashes it on the status bar.
func (a *App) notify(sev panel.Severity, text string) {
	a.messages.Add(sev, text)
	a.status.Flash(sev, text)
	a.flashSeq++
	seq := a.flashSeq
	a.queue(tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	}))
	switch sev {
	case panel.SeverityError:
		a.log.Error(text)
	case panel.SeverityWarning:
		a.log.Warn(text)
	default:
		a.log.Info(text)
	}
}

func (a *App) absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.cfg.Workspace, p)
}

func (a *App) rel(p string) string {
	if r, err := filepath.Rel(a.cfg.Workspace, p); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return p
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	minW, minH := a.minWindowSize()
	if a.width < minW || a.height < minH {
		msg := fmt.Sprintf("Window too small (%dx%d)\nMinimum supported: %dx%d", a.width, a.height, minW, minH)
		style := lipgloss.NewStyle().
			Foreground(a.theme.Text).
			Padding(1, 2)
		box := style.Render(msg)

		base := strings.Repeat("\n", max(a.height, 1))
		return overlayCenter(base, box, a.width, a.height)
	}

	l := a.layout()
	showTree, showInfo, showPanel := a.panelsVisible()

	docView := a.documentTitle() + "\n" + a.documentView()

	var columns []string
	if showTree {
		borderStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, false, false).
			BorderForeground(a.theme.Border).
			Width(max(l.TreeWidth-1, 0)).
			Height(l.Height)
		columns = append(columns, borderStyle.Render(a.tree.View()))
	}

	docStyle := lipgloss.NewStyle().
		Width(l.EditorWidth).
		Height(l.Height)
	columns = append(columns, docStyle.Render(docView))

	if showInfo {
		borderStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(a.theme.Border).
			Width(max(l.InfoWidth-1, 0)).
			Height(l.Height)
		columns = append(columns, borderStyle.Render(a.info.View()))
	}

	result := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	if showPanel && l.PanelHeight > 0 {
		panelStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true, false, false, false).
			BorderForeground(a.theme.Border).
			Width(a.width).
			Height(l.PanelHeight)
		result += "\n" + panelStyle.Render(a.messages.View())
	}

	result += "\n" + a.status.View()

	// Overlay which-key popup
	if a.leader.showHelp {
		if wkView := a.whichKey.View(); wkView != "" {
			result = overlayCenter(result, wkView, a.width, a.height)
		}
	}

	return result
}

func (a *App) documentView() string {
	if a.active != nil {
		return a.active.pane.View()
	}
	return a.editor.View()
}

func (a *App) documentTitle() string {
	title := "Scout"
	if a.active != nil {
		title = a.active.name
	} else if cur := a.editor.CurrentFile(); cur != "" {
		title = filepath.Base(cur)
	}

	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if a.focused == focusEditor {
		style = style.Foreground(a.theme.Accent).Underline(true)
	} else {
		style = style.Foreground(a.theme.Dim)
	}
	return style.Render(title)
}

// Close saves the layout and shuts every subsystem down. It is safe to
// call more than once.
func (a *App) Close() {
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	a.ctl.Shutdown()

	if a.store != nil {
		st := state.State{
			ActiveFile:  a.docPath,
			ShowTree:    a.showTree,
			ShowInfo:    a.showInfo,
			ShowPanel:   a.showPanel,
			TreeWidth:   a.treeWidth,
			InfoWidth:   a.infoWidth,
			PanelHeight: a.panelHeight,
		}
		if err := a.store.Save(st); err != nil {
			a.log.Error("save state", "err", err)
		}
	}

	close(a.done)
	for _, t := range a.terms {
		t.pane.Close()
	}
	a.editor.Close()
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.log.Error("stop watcher", "err", err)
		}
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Error("close history", "err", err)
		}
	}
}

func (a *App) panelsVisible() (tree, info, bottom bool) {
	return a.showTree && !a.zenMode, a.showInfo && !a.zenMode, a.showPanel && !a.zenMode
}

func (a *App) minWindowSize() (minW, minH int) {
	return 60, 24
}

func (a *App) layout() Layout {
	showTree, showInfo, showPanel := a.panelsVisible()
	return ComputeLayout(a.width, a.height, showTree, showInfo, showPanel,
		a.treeWidth, a.infoWidth, a.panelHeight)
}

// documentSize is the size of the document area below its title row.
func (a *App) documentSize(l Layout) (int, int) {
	return l.EditorWidth, max(l.Height-1, 1)
}

// updateLayout pushes the current sizes into every panel and pane.
func (a *App) updateLayout() {
	if a.width == 0 || a.height == 0 {
		return
	}
	l := a.layout()

	a.tree.SetSize(l.TreeWidth, l.Height)
	a.info.SetSize(l.InfoWidth, l.Height)
	a.messages.SetSize(a.width, l.PanelHeight)
	a.status.SetWidth(a.width)
	a.whichKey.SetWidth(a.width / 2)

	w, h := a.documentSize(l)
	for _, t := range a.terms {
		if err := t.pane.Resize(w, h); err != nil {
			a.log.Warn("resize terminal", "name", t.name, "err", err)
		}
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(tea.WindowSizeMsg{Width: w, Height: h})
	a.queue(cmd)
}

func (a *App) updateWhichKey() {
	if !a.leader.showHelp || a.leader.node == nil {
		a.whichKey.Clear()
		return
	}

	var entries []panel.WhichKeyEntry
	for _, b := range a.leader.node {
		label := b.Label
		if b.Describe != nil {
			label = b.Describe(a)
		}
		entries = append(entries, panel.WhichKeyEntry{
			Key:   b.Key,
			Label: label,
			Group: b.Children != nil,
		})
	}
	path := []string{leaderName(a.cfg.LeaderKey)}
	for _, k := range a.leader.keys {
		path = append(path, string(k))
	}
	a.whichKey.SetEntries(path, entries)
}

// syncStatus mirrors mode and file manager state onto the status bar.
func (a *App) syncStatus() {
	if t := a.focusedTerminal(); t != nil {
		a.status.SetMode(strings.ToUpper(t.name))
	} else {
		a.status.SetMode(modeDisplayName(a.editor.Mode()))
	}

	right := ""
	if s := a.ctl.State(); s != toggle.Closed {
		right = "yazi " + s.String()
	}
	a.status.SetRight(right)
}

func (a *App) setFocus(target focusedPanel) {
	a.tree.SetFocused(target == focusTree)
	a.info.SetFocused(target == focusInfo)
	docFocused := target == focusEditor
	a.editor.SetFocused(docFocused && a.active == nil)
	for _, t := range a.terms {
		t.pane.SetShowCursor(docFocused && t == a.active)
	}
	a.focused = target
}

func (a *App) focusLeft() {
	switch a.focused {
	case focusEditor:
		if show, _, _ := a.panelsVisible(); show {
			a.setFocus(focusTree)
		}
	case focusInfo:
		a.setFocus(focusEditor)
	}
}

func (a *App) focusRight() {
	switch a.focused {
	case focusEditor:
		if _, show, _ := a.panelsVisible(); show {
			a.setFocus(focusInfo)
		}
	case focusTree:
		a.setFocus(focusEditor)
	}
}

func (a *App) ToggleTree() {
	a.SetVisible(layout.Sidebar, !a.showTree)
}

func (a *App) ToggleInfo() {
	a.SetVisible(layout.SecondarySidebar, !a.showInfo)
}

func (a *App) TogglePanel() {
	a.SetVisible(layout.Panel, !a.showPanel)
}

func (a *App) ToggleZen() {
	a.zenMode = !a.zenMode
	if a.zenMode && (a.focused == focusTree || a.focused == focusInfo) {
		a.setFocus(focusEditor)
	}
	a.updateLayout()
}

// RevealActive selects the active document in the tree and focuses it.
func (a *App) RevealActive() {
	doc := a.docPath
	if doc == "" {
		a.notify(panel.SeverityInfo, "no document to reveal")
		return
	}
	a.zenMode = false
	if !a.showTree {
		a.SetVisible(layout.Sidebar, true)
	}
	a.tree.Reveal(doc)
	a.setFocus(focusTree)
	a.updateLayout()
}

func modeDisplayName(mode editor.NvimMode) string {
	names := map[editor.NvimMode]string{
		editor.ModeNormal:  "NORMAL",
		editor.ModeInsert:  "INSERT",
		editor.ModeVisual:  "VISUAL",
		editor.ModeVisLine: "V-LINE",
		editor.ModeVisBlk:  "V-BLOCK",
		editor.ModeCommand: "COMMAND",
		editor.ModeReplace: "REPLACE",
		editor.ModeTermnl:  "TERMINAL",
	}
	if n, ok := names[mode]; ok {
		return n
	}
	return strings.ToUpper(string(mode))
}

func overlayCenter(base, overlay string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := 0
	for _, line := range overlayLines {
		overlayWidth = max(overlayWidth, lipgloss.Width(line))
	}

	startRow := max((height-len(overlayLines))/2, 0)
	startCol := max((width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		row := startRow + i
		if row >= len(baseLines) {
			break
		}

		baseLine := baseLines[row]
		if w := lipgloss.Width(baseLine); w < startCol {
			baseLine += strings.Repeat(" ", startCol-w)
		}

		// Cut by columns so ANSI sequences in the base survive.
		left := ansi.Cut(baseLine, 0, startCol)
		right := ansi.Cut(baseLine, startCol+overlayWidth, width)
		baseLines[row] = ansi.Truncate(left+overlayLine+right, width, "")
	}

	return strings.Join(baseLines, "\n")
}
