package config

import "os"

type Config struct {
	Workspace       string
	Listen          string
	Serve           bool
	Theme           string
	TreeWidth       int
	InfoWidth       int
	PanelHeight     int
	LeaderKey       string
	LeaderTimeout   int // milliseconds
	ToggleKey       string
	NvimMode        string
	Ignore          []string
	LogLevel        string
	ResetNvimConfig bool
}

func Default() Config {
	wd, err := os.Getwd()
	if err != nil {
		wd, _ = os.UserHomeDir()
	}
	return Config{
		Workspace:     wd,
		Listen:        ":2222",
		Serve:         false,
		Theme:         "catppuccin",
		TreeWidth:     30,
		InfoWidth:     30,
		PanelHeight:   6,
		LeaderKey:     " ",
		LeaderTimeout: 500,
		ToggleKey:     "ctrl+y",
		NvimMode:      "managed",
		Ignore:        []string{".git", "node_modules", "**/.DS_Store"},
		LogLevel:      "info",
	}
}
