package app

import (
	"context"
	"fmt"

	"github.com/pfassina/scout/internal/focus"
	"github.com/pfassina/scout/internal/layout"
	"github.com/pfassina/scout/internal/panel"
	"github.com/pfassina/scout/internal/terminal"
	"github.com/pfassina/scout/internal/toggle"
)

// documentGroup is the only tab group: the document area holds the editor
// and any terminal tabs.
const documentGroup = 0

// termTab is a terminal tab in the document area.
type termTab struct {
	pane     *terminal.Pane
	name     string
	onExit   func()
	disposed bool
}

func (t *termTab) Group() int { return documentGroup }

func (a *App) Visible(r layout.Region) bool {
	switch r {
	case layout.Sidebar:
		return a.showTree
	case layout.Panel:
		return a.showPanel
	case layout.SecondarySidebar:
		return a.showInfo
	}
	return false
}

func (a *App) SetVisible(r layout.Region, visible bool) {
	switch r {
	case layout.Sidebar:
		a.showTree = visible
		if !visible && a.focused == focusTree {
			a.setFocus(focusEditor)
		}
	case layout.Panel:
		a.showPanel = visible
	case layout.SecondarySidebar:
		a.showInfo = visible
		if !visible && a.focused == focusInfo {
			a.setFocus(focusEditor)
		}
	}
	a.updateLayout()
}

func (a *App) Maximize() {
	a.maximized = true
	a.SetVisible(layout.Sidebar, false)
	a.SetVisible(layout.SecondarySidebar, false)
}

func (a *App) Unmaximize() {
	a.maximized = false
	a.updateLayout()
}

func (a *App) TabGroups() []focus.TabGroup {
	g := focus.TabGroup{ID: documentGroup, Documents: a.editor.Listed()}
	for _, t := range a.terms {
		if !t.disposed {
			g.Terminals++
		}
	}
	return []focus.TabGroup{g}
}

func (a *App) FocusGroup(id int) error {
	if id != documentGroup {
		return fmt.Errorf("no tab group %d", id)
	}
	a.active = nil
	a.setFocus(focusEditor)
	return nil
}

// OpenDocument opens path in the editor and focuses it. Previews are not
// supported; preview is ignored.
func (a *App) OpenDocument(ctx context.Context, path string, preview bool) error {
	path = a.absPath(path)
	if err := a.editor.OpenFile(ctx, path); err != nil {
		return err
	}
	a.active = nil
	a.setFocus(focusEditor)
	a.refreshDocument(path)
	return nil
}

func (a *App) ActiveDocument() string {
	if a.active != nil {
		return ""
	}
	return a.absPath(a.editor.CurrentFile())
}

func (a *App) WorkspaceRoots() []string {
	return []string{a.cfg.Workspace}
}

func (a *App) OpenTerminal(spec toggle.Spec) (toggle.Terminal, error) {
	w, h := a.documentSize(a.layout())
	pane, err := terminal.Start(terminal.Options{
		Argv:   spec.Argv,
		Dir:    spec.Dir,
		Env:    spec.Env,
		Width:  w,
		Height: h,
	})
	if err != nil {
		return nil, err
	}

	t := &termTab{pane: pane, name: spec.Name, onExit: spec.OnExit}
	a.terms[pane.ID()] = t
	a.active = t
	a.setFocus(focusEditor)
	a.queue(pane.Read)
	a.log.Debug("terminal opened", "name", spec.Name, "id", pane.ID(), "pid", pane.Pid())
	return t, nil
}

func (a *App) FocusTerminal(term toggle.Terminal) {
	t, ok := term.(*termTab)
	if !ok || t.disposed {
		return
	}
	a.active = t
	a.setFocus(focusEditor)
}

func (a *App) TerminalFocused(term toggle.Terminal) bool {
	t, ok := term.(*termTab)
	return ok && !t.disposed && a.active == t && a.focused == focusEditor
}

// Dispose kills the terminal. Its tab disappears at once; OnExit runs when
// the process is reaped.
func (a *App) Dispose(term toggle.Terminal) {
	t, ok := term.(*termTab)
	if !ok || t.disposed {
		return
	}
	t.disposed = true
	if a.active == t {
		a.active = nil
		a.setFocus(a.focused)
	}
	t.pane.Close()
}

func (a *App) ShowRecentTab(group int) error {
	if group != documentGroup {
		return fmt.Errorf("no tab group %d", group)
	}
	a.active = nil
	a.setFocus(a.focused)
	return nil
}

// focusedTerminal returns the terminal tab holding keyboard focus.
func (a *App) focusedTerminal() *termTab {
	if a.active == nil || a.focused != focusEditor {
		return nil
	}
	return a.active
}

// terminalExited removes the tab of an exited pane and runs its exit hook.
func (a *App) terminalExited(msg terminal.ExitedMsg) {
	t, ok := a.terms[msg.ID]
	if !ok {
		return
	}
	delete(a.terms, msg.ID)
	t.pane.Close()
	if a.active == t {
		a.active = nil
		a.setFocus(a.focused)
	}
	a.log.Debug("terminal exited", "name", t.name, "id", msg.ID, "err", msg.Err)
	if t.onExit != nil {
		t.onExit()
	}
}

func (a *App) ShowError(msg string) {
	a.notify(panel.SeverityError, msg)
}

func (a *App) ShowWarning(msg string) {
	a.notify(panel.SeverityWarning, msg)
}
