package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/scout/internal/editor"
	"github.com/pfassina/scout/internal/toggle"
)

// Binding represents a leader key binding.
type Binding struct {
	Key      string
	Label    string
	Action   func(a *App) tea.Cmd
	Children map[string]*Binding
	// Describe, when set, replaces Label in the which-key popup.
	Describe func(a *App) string
}

// LeaderState tracks the leader key sequence.
type LeaderState struct {
	active   bool
	keys     string
	node     map[string]*Binding
	showHelp bool
}

// leaderTimeoutMsg signals leader key timeout.
type leaderTimeoutMsg struct{}

func newBindings() map[string]*Binding {
	return map[string]*Binding{
		"e": {
			Key: "e", Label: "File manager",
			Action: func(a *App) tea.Cmd {
				a.toggleFileManager()
				return nil
			},
			Describe: func(a *App) string {
				if a.ctl.State() == toggle.Closed {
					return "File manager"
				}
				return "File manager (open)"
			},
		},
		"f": {
			Key: "f", Label: "file",
			Children: map[string]*Binding{
				"r": {Key: "r", Label: "Reveal in tree", Action: func(a *App) tea.Cmd {
					a.RevealActive()
					return nil
				}},
			},
		},
		"v": {
			Key: "v", Label: "view",
			Children: map[string]*Binding{
				"t": {Key: "t", Label: "Toggle tree", Action: func(a *App) tea.Cmd {
					a.ToggleTree()
					return nil
				}},
				"i": {Key: "i", Label: "Toggle info", Action: func(a *App) tea.Cmd {
					a.ToggleInfo()
					return nil
				}},
				"m": {Key: "m", Label: "Toggle messages", Action: func(a *App) tea.Cmd {
					a.TogglePanel()
					return nil
				}},
				"z": {Key: "z", Label: "Zen mode", Action: func(a *App) tea.Cmd {
					a.ToggleZen()
					return nil
				}},
			},
		},
		"m": {
			Key: "m", Label: "messages",
			Children: map[string]*Binding{
				"c": {Key: "c", Label: "Clear messages", Action: func(a *App) tea.Cmd {
					a.messages.Clear()
					return nil
				}},
			},
		},
		"q": {
			Key: "q", Label: "quit",
			Children: map[string]*Binding{
				"q": {Key: "q", Label: "Quit Scout", Action: func(a *App) tea.Cmd {
					a.Close()
					return tea.Quit
				}},
			},
		},
	}
}

func (a *App) initLeader() {
	a.bindings = newBindings()
	a.leader = LeaderState{}
}

func (a *App) leaderTick() tea.Cmd {
	return tea.Tick(time.Duration(a.cfg.LeaderTimeout)*time.Millisecond, func(time.Time) tea.Msg {
		return leaderTimeoutMsg{}
	})
}

// handleLeaderKey processes a key during leader mode.
// Returns true if the key was consumed by the leader system.
func (a *App) handleLeaderKey(key string) (consumed bool, cmd tea.Cmd) {
	if !a.leader.active {
		if key != a.cfg.LeaderKey {
			return false, nil
		}
		// Only check Neovim mode when editor is focused
		if a.focused == focusEditor && a.editor.Mode() != editor.ModeNormal {
			return false, nil
		}
		a.leader.active = true
		a.leader.keys = ""
		a.leader.node = a.bindings
		a.leader.showHelp = false
		return true, a.leaderTick()
	}

	a.leader.keys += key

	if binding, ok := a.leader.node[key]; ok {
		if binding.Children != nil {
			a.leader.node = binding.Children
			a.leader.showHelp = false
			return true, a.leaderTick()
		}
		a.cancelLeader()
		if binding.Action != nil {
			return true, binding.Action(a)
		}
		return true, nil
	}

	// No match - cancel leader mode
	a.cancelLeader()
	return true, nil
}

func (a *App) handleLeaderTimeout() {
	if a.leader.active {
		a.leader.showHelp = true
	}
}

func (a *App) cancelLeader() {
	a.leader.active = false
	a.leader.showHelp = false
}

// leaderName is how the leader key is shown to the user.
func leaderName(key string) string {
	if key == " " {
		return "Space"
	}
	return key
}
