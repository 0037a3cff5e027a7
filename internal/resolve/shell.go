package resolve

import (
	"context"
	"runtime"
	"strings"
)

// Dialect selects the quoting rules of a shell.
type Dialect int

const (
	POSIX Dialect = iota
	PowerShell
)

// FallbackShell is used on POSIX systems when bash is not on the PATH.
const FallbackShell = "/bin/sh"

// Shell is the program the file manager command line runs in.
type Shell struct {
	Path    string
	Dialect Dialect
}

// FindShell picks the shell for goos: powershell.exe on Windows, bash from
// the PATH elsewhere with /bin/sh as the fallback. Falling back produces a
// warning.
func FindShell(ctx context.Context, f Finder, goos string) (Shell, string) {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "windows" {
		return Shell{Path: "powershell.exe", Dialect: PowerShell}, ""
	}

	p, err := f.Find(ctx, "bash")
	if err != nil {
		return Shell{Path: FallbackShell, Dialect: POSIX}, "bash not found on PATH, using " + FallbackShell
	}
	return Shell{Path: p, Dialect: POSIX}, ""
}

// Command returns the argv that runs exe with args inside the shell.
func (s Shell) Command(exe string, args ...string) []string {
	words := make([]string, 0, len(args)+1)
	words = append(words, s.Quote(exe))
	for _, a := range args {
		words = append(words, s.Quote(a))
	}
	line := strings.Join(words, " ")

	if s.Dialect == PowerShell {
		return []string{s.Path, "-NoProfile", "-Command", "& " + line}
	}
	return []string{s.Path, "-c", line}
}

// Quote quotes word so the shell passes it through as a single argument.
func (s Shell) Quote(word string) string {
	if s.Dialect == PowerShell {
		return "'" + strings.ReplaceAll(word, "'", "''") + "'"
	}
	if word != "" && strings.IndexFunc(word, needsQuote) < 0 {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./=:,+@%", r)
}
