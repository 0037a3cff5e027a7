package editor

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed nvim_init.lua
var defaultInitLua []byte

// AppName is the NVIM_APPNAME of the managed profile.
const AppName = "scout-nvim"

type ProfileMode string

const (
	// ProfileManaged runs Neovim with scout's own config directory.
	ProfileManaged ProfileMode = "managed"
	// ProfileUser runs Neovim with the user's regular config.
	ProfileUser ProfileMode = "user"
)

// ConfigDir returns the managed Neovim config directory.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/scout-nvim.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// EnsureProfile prepares the Neovim config for mode. In managed mode it
// writes init.lua unless one already exists. User mode needs nothing.
func EnsureProfile(mode ProfileMode) error {
	switch mode {
	case ProfileUser:
		return nil
	case ProfileManaged:
	default:
		return fmt.Errorf("unknown nvim mode %q (want managed or user)", mode)
	}

	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	initPath := filepath.Join(dir, "init.lua")
	if _, err := os.Stat(initPath); os.IsNotExist(err) {
		if err := os.WriteFile(initPath, defaultInitLua, 0644); err != nil {
			return fmt.Errorf("write init.lua: %w", err)
		}
	}
	return nil
}

// ResetProfile overwrites init.lua with the embedded default.
func ResetProfile() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	initPath := filepath.Join(dir, "init.lua")
	if err := os.WriteFile(initPath, defaultInitLua, 0644); err != nil {
		return fmt.Errorf("write init.lua: %w", err)
	}

	return nil
}

// CheckNvimVersion verifies that nvim is installed and >= 0.9.
func CheckNvimVersion() error {
	out, err := exec.Command("nvim", "--version").Output()
	if err != nil {
		return fmt.Errorf("nvim not found: %w", err)
	}

	// First line is like "NVIM v0.10.2"
	first, _, _ := strings.Cut(string(out), "\n")
	version := strings.TrimPrefix(strings.TrimSpace(first), "NVIM v")

	major, minor, err := parseSemver(version)
	if err != nil {
		return fmt.Errorf("could not parse nvim version %q: %w", version, err)
	}

	if major == 0 && minor < 9 {
		return fmt.Errorf("nvim >= 0.9 required, found %d.%d", major, minor)
	}

	return nil
}

func parseSemver(s string) (int, int, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid version: %s", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

// NvimEnv returns the environment added to the Neovim process for mode.
func NvimEnv(mode ProfileMode) []string {
	if mode == ProfileUser {
		return nil
	}
	return []string{"NVIM_APPNAME=" + AppName}
}
