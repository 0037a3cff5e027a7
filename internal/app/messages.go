package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

func fatalCmd(err error) tea.Cmd {
	return tea.Batch(tea.Printf("fatal: %v\n", err), tea.Quit)
}

// eventMsg wraps a message that arrived on the app's event channel from a
// background goroutine (Neovim RPC, workspace watcher).
type eventMsg struct{ msg tea.Msg }

// workspaceChangedMsg reports files changed on disk.
type workspaceChangedMsg struct{ paths []string }

// clearFlashMsg hides a status bar flash unless a newer one replaced it.
type clearFlashMsg struct{ seq int }
