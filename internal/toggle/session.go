package toggle

import (
	"github.com/pfassina/scout/internal/focus"
	"github.com/pfassina/scout/internal/layout"
)

// Session is one open file manager terminal, from spawn to exit.
type Session struct {
	token   uint64
	term    Terminal
	chooser string
	target  focus.Target
	restore layout.Restore
	dir     string
	// closing is set once the terminal was disposed.
	closing bool
}

// Token identifies the session. Tokens increase with every spawn.
func (s *Session) Token() uint64 { return s.token }

// ChooserPath is where the file manager writes its selection.
func (s *Session) ChooserPath() string { return s.chooser }

// Dir is the working directory the file manager started in.
func (s *Session) Dir() string { return s.dir }

// Previous is the document that had focus when the session opened.
func (s *Session) Previous() string { return s.target.Previous }
