package ssh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bts "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/pfassina/scout/internal/config"
)

// HostKeyName is the host key file inside the state directory.
const HostKeyName = "ssh_host_key"

// Server wraps a Wish SSH server. Every session gets its own workspace UI.
type Server struct {
	server *ssh.Server
	cfg    config.Config
}

// New creates a new SSH server.
func New(cfg config.Config, logger *log.Logger) (*Server, error) {
	dir := config.StateDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	hostKeyPath := filepath.Join(dir, HostKeyName)

	s, err := wish.NewServer(
		wish.WithAddress(cfg.Listen),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			logging.MiddlewareWithLogger(logger.WithPrefix("ssh")),
			activeterm.Middleware(),
			bts.Middleware(NewHandler(cfg, logger)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}

	return &Server{server: s, cfg: cfg}, nil
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// ListenAndServe serves until Close. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the SSH server.
func (s *Server) Close() error {
	return s.server.Close()
}
