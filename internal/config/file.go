package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML. The file manager settings
// share the same file and are read separately by Loader.
type fileConfig struct {
	Workspace     *string   `toml:"workspace"`
	Theme         *string   `toml:"theme"`
	TreeWidth     *int      `toml:"tree_width"`
	InfoWidth     *int      `toml:"info_width"`
	PanelHeight   *int      `toml:"panel_height"`
	NvimMode      *string   `toml:"nvim_mode"`
	LeaderKey     *string   `toml:"leader_key"`
	LeaderTimeout *int      `toml:"leader_timeout"`
	ToggleKey     *string   `toml:"toggle_key"`
	Listen        *string   `toml:"listen"`
	Ignore        *[]string `toml:"ignore"`
	LogLevel      *string   `toml:"log_level"`

	YaziPath *string `toml:"yazi_path,omitempty"`
}

// ConfigDir returns the scout config directory, respecting XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scout")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scout")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StateDir returns the scout state directory (logs, history), respecting
// XDG_STATE_HOME.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "scout")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "scout")
}

// LoadFile reads config.toml and merges non-nil fields into cfg.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config) (bool, error) {
	data, err := os.ReadFile(ConfigPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return true, err
	}

	if fc.Workspace != nil {
		cfg.Workspace = ExpandHome(*fc.Workspace)
	}
	if fc.Theme != nil {
		cfg.Theme = *fc.Theme
	}
	if fc.TreeWidth != nil {
		cfg.TreeWidth = *fc.TreeWidth
	}
	if fc.InfoWidth != nil {
		cfg.InfoWidth = *fc.InfoWidth
	}
	if fc.PanelHeight != nil {
		cfg.PanelHeight = *fc.PanelHeight
	}
	if fc.NvimMode != nil {
		cfg.NvimMode = *fc.NvimMode
	}
	if fc.LeaderKey != nil {
		cfg.LeaderKey = *fc.LeaderKey
	}
	if fc.LeaderTimeout != nil {
		cfg.LeaderTimeout = *fc.LeaderTimeout
	}
	if fc.ToggleKey != nil {
		cfg.ToggleKey = *fc.ToggleKey
	}
	if fc.Listen != nil {
		cfg.Listen = *fc.Listen
	}
	if fc.Ignore != nil {
		cfg.Ignore = *fc.Ignore
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}

	return true, nil
}

// SaveYaziPath writes a minimal config.toml recording the yazi executable.
// Used by the first-run setup when yazi is not on PATH.
func SaveYaziPath(yaziPath string) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Store with ~ for readability if under home dir.
	home, _ := os.UserHomeDir()
	display := yaziPath
	if home != "" && strings.HasPrefix(yaziPath, home+string(os.PathSeparator)) {
		display = "~" + yaziPath[len(home):]
	}

	fc := fileConfig{YaziPath: &display}
	f, err := os.Create(filepath.Join(dir, "config.toml"))
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(fc)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
