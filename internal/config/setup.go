package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SetupResult is returned by RunSetup.
type SetupResult struct {
	YaziPath  string
	Cancelled bool
}

type setupModel struct {
	input textinput.Model
	err   string
	done  bool
	quit  bool
}

func newSetupModel() setupModel {
	ti := textinput.New()
	ti.Placeholder = "~/.cargo/bin/yazi"
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return setupModel{input: ti}
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			path := m.input.Value()
			if path == "" {
				m.err = "enter the path of the yazi executable"
				return m, nil
			}

			if err := validateExecutable(ExpandHome(path)); err != nil {
				m.err = err.Error()
				return m, nil
			}

			m.done = true
			return m, tea.Quit

		case "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m setupModel) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")).
		Render("Welcome to scout")

	var s string
	s += "\n " + title + "\n\n"
	s += " yazi was not found on your PATH.\n"
	s += " Enter the path of the yazi executable:\n\n"
	s += "   " + m.input.View() + "\n\n"

	if m.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		s += " " + errStyle.Render(m.err) + "\n\n"
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	s += " " + dim.Render("Press Enter to confirm, Esc to skip") + "\n"

	return s
}

// validateExecutable checks that path names an existing regular file.
func validateExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s does not exist", path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// RunSetup runs the first-run TUI prompt and persists the chosen yazi path.
func RunSetup() (SetupResult, error) {
	m := newSetupModel()
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return SetupResult{}, err
	}

	fm, ok := final.(setupModel)
	if !ok {
		return SetupResult{}, fmt.Errorf("unexpected model type from setup wizard")
	}
	if fm.quit || !fm.done {
		return SetupResult{Cancelled: true}, nil
	}

	expanded := ExpandHome(fm.input.Value())
	if err := SaveYaziPath(expanded); err != nil {
		return SetupResult{}, fmt.Errorf("saving config: %w", err)
	}

	return SetupResult{YaziPath: expanded}, nil
}
