package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
)

func mkfiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListEntries_TreeOrder(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "b.go", "a/z.go", "a/sub/y.go", "c/x.go", "README.md")

	ws, err := New(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := ws.ListEntries()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"a",
		filepath.Join("a", "sub"),
		filepath.Join("a", "sub", "y.go"),
		filepath.Join("a", "z.go"),
		"c",
		filepath.Join("c", "x.go"),
		"README.md",
		"b.go",
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		if entries[i].Path != w {
			t.Errorf("[%d] = %q, want %q", i, entries[i].Path, w)
		}
	}
	if entries[2].Depth != 2 || !entries[1].IsDir {
		t.Errorf("depth/dir mismatch: %+v %+v", entries[1], entries[2])
	}
}

func TestListEntries_Ignore(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, ".git/HEAD", "node_modules/x/index.js", "src/main.go", "src/.DS_Store", "build/out.bin")

	ws, err := New(root, []string{".git", "node_modules", "**/.DS_Store", "**/*.bin"})
	if err != nil {
		t.Fatal(err)
	}
	entries, err := ws.ListEntries()
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, e := range entries {
		got = append(got, filepath.ToSlash(e.Path))
	}
	want := []string{"build", "src", "src/main.go"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New(t.TempDir(), []string{"[unclosed"}); err == nil {
		t.Error("New should reject an invalid pattern")
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "keep.txt")

	ws, err := New(root, []string{"*.tmp"})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var seen []string
	calls := make(chan struct{}, 8)
	w, err := NewWatcher(ws, nil, func(paths []string) {
		mu.Lock()
		seen = append(seen, paths...)
		mu.Unlock()
		calls <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}
	go w.Start()
	defer w.Stop()

	mkfiles(t, root, "ignored.tmp", "new.txt")

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	mu.Lock()
	defer mu.Unlock()
	sort.Strings(seen)
	for _, p := range seen {
		if filepath.Ext(p) == ".tmp" {
			t.Errorf("ignored path reported: %s", p)
		}
	}
	found := false
	for _, p := range seen {
		if p == filepath.Join(root, "new.txt") {
			found = true
		}
	}
	if !found {
		t.Errorf("new.txt not reported, got %v", seen)
	}
}
