package ssh

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	bts "github.com/charmbracelet/wish/bubbletea"

	"github.com/pfassina/scout/internal/app"
	"github.com/pfassina/scout/internal/config"
)

// NewHandler returns a Bubble Tea handler for SSH sessions.
func NewHandler(cfg config.Config, logger *log.Logger) bts.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		l := logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
		a := app.New(cfg, l)

		// The program is torn down with the session; release nvim and
		// any file manager it left running.
		go func() {
			<-sess.Context().Done()
			a.Close()
		}()

		opts := []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		}
		opts = append(opts, bts.MakeOptions(sess)...)

		return a, opts
	}
}
