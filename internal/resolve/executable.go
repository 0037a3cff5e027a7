// Package resolve locates the file manager executable, its configuration
// directory and the shell it runs in.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an executable is neither configured nor on
// the search path.
var ErrNotFound = errors.New("executable not found")

// Finder looks up an executable by name on the search path.
type Finder interface {
	Find(ctx context.Context, name string) (string, error)
}

// PathFinder searches $PATH. The lookup runs in its own goroutine so a
// cancelled ctx returns immediately even when the filesystem is slow.
type PathFinder struct{}

func (PathFinder) Find(ctx context.Context, name string) (string, error) {
	type result struct {
		path string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := exec.LookPath(name)
		ch <- result{p, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("looking up %s: %w", name, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return r.path, nil
	}
}

// Executable returns the file manager to run. A non-empty configured path
// is used when it names an existing file; otherwise the configured path is
// reported in a warning and name is searched on the PATH instead.
func Executable(ctx context.Context, f Finder, configured, name string) (string, []string, error) {
	var warnings []string
	if configured != "" {
		p := ExpandHome(configured)
		err := checkFile(p)
		if err == nil {
			return p, nil, nil
		}
		warnings = append(warnings, fmt.Sprintf("yazi_path %q is not usable (%v), searching PATH", configured, err))
	}

	p, err := f.Find(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", warnings, fmt.Errorf("%s not found on PATH; install it or set yazi_path: %w", name, ErrNotFound)
		}
		return "", warnings, err
	}
	return p, warnings, nil
}

// ConfigDir validates the configured file manager config directory. An
// empty path means none. An invalid path is dropped with a warning so the
// file manager starts with its own defaults.
func ConfigDir(configured string) (string, string) {
	if configured == "" {
		return "", ""
	}
	p := ExpandHome(configured)
	info, err := os.Stat(p)
	if err != nil {
		return "", fmt.Sprintf("yazi_config_path %q is not usable (%v), using the default config", configured, err)
	}
	if !info.IsDir() {
		return "", fmt.Sprintf("yazi_config_path %q is not a directory, using the default config", configured)
	}
	return p, ""
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
