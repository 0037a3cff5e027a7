package toggle

import (
	"github.com/pfassina/scout/internal/focus"
	"github.com/pfassina/scout/internal/layout"
)

// Terminal is a terminal tab owned by the host.
type Terminal interface {
	// Group is the tab group the terminal lives in.
	Group() int
}

// Spec describes the terminal to open.
type Spec struct {
	Name string
	Argv []string
	Dir  string
	// Env is added to the host environment.
	Env []string
	// OnExit runs on the host's event loop once the terminal is gone,
	// whether the process exited on its own or the terminal was disposed.
	OnExit func()
}

// Host is the editor shell the controller drives.
type Host interface {
	layout.Chrome
	focus.Host

	// ActiveDocument returns the absolute path of the focused document, or
	// "" when no document has focus.
	ActiveDocument() string
	WorkspaceRoots() []string

	OpenTerminal(spec Spec) (Terminal, error)
	FocusTerminal(t Terminal)
	TerminalFocused(t Terminal) bool
	Dispose(t Terminal)
	// ShowRecentTab switches group to its most recently used tab other
	// than the focused one.
	ShowRecentTab(group int) error

	ShowError(msg string)
	ShowWarning(msg string)
}

// Recorder remembers documents picked in the file manager.
type Recorder interface {
	Record(paths ...string) error
}
