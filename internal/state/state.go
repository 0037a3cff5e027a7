// Package state persists the chrome layout between runs.
package state

// State represents persisted UI state.
type State struct {
	ActiveFile  string `json:"active_file,omitempty"`
	ShowTree    bool   `json:"show_tree"`
	ShowInfo    bool   `json:"show_info"`
	ShowPanel   bool   `json:"show_panel"`
	TreeWidth   int    `json:"tree_width,omitempty"`
	InfoWidth   int    `json:"info_width,omitempty"`
	PanelHeight int    `json:"panel_height,omitempty"`
}

// Default returns the default state.
func Default() State {
	return State{
		ShowTree:    true,
		ShowInfo:    true,
		ShowPanel:   false,
		TreeWidth:   30,
		InfoWidth:   30,
		PanelHeight: 6,
	}
}
