// Package chooser implements the chooser-file handshake with the file
// manager: scout hands it a path, the file manager writes the selected
// paths there before it exits, and scout reads and deletes the file.
package chooser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Flag is the command-line flag that tells yazi where to write selections.
const Flag = "--chooser-file"

var seq atomic.Uint64

// NewPath returns a chooser path in dir that no earlier call in this
// process has returned. An empty dir means os.TempDir().
func NewPath(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("scout-chooser-%d-%d-%d.txt", os.Getpid(), time.Now().UnixNano(), seq.Add(1))
	return filepath.Join(dir, name)
}

// Drain reads the selections at path and deletes the file.
// A missing file means nothing was chosen and is not an error. The file is
// removed even when reading it fails.
func Drain(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chooser file: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse splits chooser file contents into paths, skipping empty lines and
// lines that cannot be paths. Lines are taken verbatim apart from a
// trailing carriage return; file names may start or end with spaces.
func Parse(content string) []string {
	var paths []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.ContainsRune(line, 0) {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// remove deletes path, ignoring every error.
func remove(path string) {
	_ = os.Remove(path)
}
