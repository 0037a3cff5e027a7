package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/pfassina/scout/internal/app"
	"github.com/pfassina/scout/internal/config"
	"github.com/pfassina/scout/internal/editor"
	"github.com/pfassina/scout/internal/logging"
	"github.com/pfassina/scout/internal/ssh"
)

func main() {
	cfg := config.Default()
	configExisted, err := config.LoadFile(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}

	workspace := flag.String("workspace", cfg.Workspace, "workspace directory")
	serve := flag.Bool("serve", cfg.Serve, "run in SSH server mode")
	listen := flag.String("listen", cfg.Listen, "listen address for --serve (e.g. :2222)")
	themeName := flag.String("theme", cfg.Theme, "UI theme: catppuccin|nord|gruvbox|tokyo-night")
	nvimMode := flag.String("nvim-mode", cfg.NvimMode, "neovim config mode: managed|user")
	leaderKey := flag.String("leader-key", cfg.LeaderKey, "leader key (default: space)")
	leaderTimeout := flag.Int("leader-timeout", cfg.LeaderTimeout, "leader timeout in ms")
	toggleKey := flag.String("toggle-key", cfg.ToggleKey, "key that shows and hides the file manager")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	resetNvimConfig := flag.Bool("reset-nvim-config", false, "reset managed Neovim config to defaults")

	flag.Parse()

	// Expand ~ and make absolute so Neovim and yazi agree on paths.
	cfg.Workspace = config.ExpandHome(*workspace)
	if abs, err := filepath.Abs(cfg.Workspace); err == nil {
		cfg.Workspace = abs
	}
	cfg.Serve = *serve
	cfg.Listen = *listen
	cfg.Theme = *themeName
	cfg.NvimMode = *nvimMode
	cfg.LeaderKey = *leaderKey
	cfg.LeaderTimeout = *leaderTimeout
	cfg.ToggleKey = *toggleKey
	cfg.LogLevel = *logLevel
	cfg.ResetNvimConfig = *resetNvimConfig

	if info, err := os.Stat(cfg.Workspace); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "workspace %s is not a directory\n", cfg.Workspace)
		os.Exit(1)
	}

	if !cfg.Serve && !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "scout needs an interactive terminal; use --serve to run over SSH")
		os.Exit(1)
	}

	// First run: ask for yazi when it cannot be found anywhere.
	if !configExisted && !cfg.Serve && !yaziAvailable() {
		res, err := config.RunSetup()
		if err != nil {
			fmt.Fprintln(os.Stderr, "setup failed:", err)
			os.Exit(1)
		}
		if res.Cancelled {
			os.Exit(0)
		}
	}

	logger, closer, err := logging.Open(config.StateDir(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error opening log:", err)
		os.Exit(1)
	}
	defer closer.Close() //nolint:errcheck // shutdown

	if err := editor.CheckNvimVersion(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.ResetNvimConfig {
		if err := editor.ResetProfile(); err != nil {
			fmt.Fprintln(os.Stderr, "reset nvim config:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "reset Neovim config")
	}

	if err := editor.EnsureProfile(editor.ProfileMode(cfg.NvimMode)); err != nil {
		fmt.Fprintln(os.Stderr, "neovim profile:", err)
		os.Exit(1)
	}

	logger.Info("starting", "workspace", cfg.Workspace, "serve", cfg.Serve, "nvim_mode", cfg.NvimMode)
	if cfg.Serve {
		err = runServe(cfg, logger)
	} else {
		err = runLocal(cfg, logger)
	}
	if err != nil {
		logger.Error("exit", "err", err)
		fmt.Fprintln(os.Stderr, err)
		closer.Close() //nolint:errcheck // exiting
		os.Exit(1)
	}
}

// yaziAvailable reports whether a yazi executable is configured or on PATH.
func yaziAvailable() bool {
	if os.Getenv(config.EnvPrefix+"_YAZI_PATH") != "" {
		return true
	}
	_, err := exec.LookPath("yazi")
	return err == nil
}

func runLocal(cfg config.Config, logger *log.Logger) error {
	// Theme colors are truecolor hex values.
	if err := os.Setenv("COLORTERM", "truecolor"); err != nil {
		return fmt.Errorf("set COLORTERM: %w", err)
	}

	a := app.New(cfg, logger)
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runServe(cfg config.Config, logger *log.Logger) error {
	s, err := ssh.New(cfg, logger)
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		if err := s.Close(); err != nil {
			logger.Error("close server", "err", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "scout listening on %s\n", s.Addr())
	logger.Info("listening", "addr", s.Addr())
	return s.ListenAndServe()
}
