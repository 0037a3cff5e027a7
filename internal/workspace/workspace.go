// Package workspace lists and watches the files under the workspace root.
package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Entry represents a file or directory in the workspace.
type Entry struct {
	Name  string
	Path  string // relative to the root
	IsDir bool
	Depth int
}

// Workspace is a directory tree shown in the sidebar.
type Workspace struct {
	Root   string
	ignore []string
}

// New returns a workspace rooted at root. Entries matching any of the
// doublestar patterns in ignore are left out, along with everything below
// an ignored directory. A pattern matches either the slash-separated path
// relative to root or the entry's base name.
func New(root string, ignore []string) (*Workspace, error) {
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return &Workspace{Root: root, ignore: ignore}, nil
}

// Ignored reports whether rel (relative to Root) is excluded.
func (w *Workspace) Ignored(rel string) bool {
	slashed := filepath.ToSlash(rel)
	base := path.Base(slashed)
	for _, p := range w.ignore {
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

// ListEntries returns a flat list of all files and directories in the
// workspace, sorted in tree order: each directory is followed by its
// children, directories before files, then alphabetically.
func (w *Workspace) ListEntries() ([]Entry, error) {
	var (
		mu      sync.Mutex
		entries []Entry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, w.Root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		rel, relErr := filepath.Rel(w.Root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		if w.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		e := Entry{
			Name:  d.Name(),
			Path:  rel,
			IsDir: d.IsDir(),
			Depth: strings.Count(rel, string(filepath.Separator)),
		}
		mu.Lock()
		entries = append(entries, e)
		mu.Unlock()
		return nil
	})

	sortTree(entries)
	return entries, err
}

// sortTree orders entries so that every directory precedes its children,
// and siblings list directories first, then by name.
func sortTree(entries []Entry) {
	isDir := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir {
			isDir[e.Path] = true
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a := strings.Split(entries[i].Path, string(filepath.Separator))
		b := strings.Split(entries[j].Path, string(filepath.Separator))
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] == b[k] {
				continue
			}
			ad := k < len(a)-1 || isDir[entries[i].Path]
			bd := k < len(b)-1 || isDir[entries[j].Path]
			if ad != bd {
				return ad
			}
			return a[k] < b[k]
		}
		return len(a) < len(b)
	})
}
