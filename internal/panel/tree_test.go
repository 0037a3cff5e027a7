package panel

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/scout/internal/theme"
	"github.com/pfassina/scout/internal/workspace"
)

func TestTree_GKey_EmptyEntries(t *testing.T) {
	tr := Tree{
		focused: true,
		height:  20,
		width:   30,
	}

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}
	result, _ := tr.Update(msg)

	if result.cursor != 0 {
		t.Errorf("cursor = %d after G on empty tree, want 0", result.cursor)
	}
}

func TestTree_Enter_EmptyEntries(t *testing.T) {
	tr := Tree{
		focused: true,
		height:  20,
		width:   30,
	}

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	result, cmd := tr.Update(msg)

	if result.cursor != 0 {
		t.Errorf("cursor = %d after enter on empty tree, want 0", result.cursor)
	}
	if cmd != nil {
		t.Error("expected nil cmd for enter on empty tree")
	}
}

func TestTree_JKey_EmptyEntries(t *testing.T) {
	tr := Tree{
		focused: true,
		height:  20,
		width:   30,
	}

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	result, _ := tr.Update(msg)

	if result.cursor != 0 {
		t.Errorf("cursor = %d after j on empty tree, want 0", result.cursor)
	}
}

func newTestTree(t *testing.T, files ...string) (Tree, string) {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := workspace.New(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	th := theme.DefaultTheme()
	tr := NewTree(ws, &th)
	tr.SetSize(30, 20)
	tr.SetFocused(true)
	tr.Refresh()
	return tr, root
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTree_EnterFile_SendsAbsolutePath(t *testing.T) {
	tr, root := newTestTree(t, "dir/a.go", "b.go")

	// dir, dir/a.go, b.go
	tr, _ = tr.Update(key("j"))
	tr, cmd := tr.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a command for enter on a file")
	}
	msg, ok := cmd().(FileSelectedMsg)
	if !ok {
		t.Fatalf("got %T, want FileSelectedMsg", cmd())
	}
	if want := filepath.Join(root, "dir", "a.go"); msg.Path != want {
		t.Errorf("Path = %q, want %q", msg.Path, want)
	}
}

func TestTree_CollapseAndReveal(t *testing.T) {
	tr, root := newTestTree(t, "dir/a.go", "b.go")

	tr, _ = tr.Update(key("enter")) // collapse dir
	if len(tr.entries) != 2 {
		t.Fatalf("visible entries = %d after collapse, want 2", len(tr.entries))
	}

	tr.Reveal(filepath.Join(root, "dir", "a.go"))
	if len(tr.entries) != 3 {
		t.Fatalf("visible entries = %d after reveal, want 3", len(tr.entries))
	}
	if got := tr.Selected(); got != filepath.Join("dir", "a.go") {
		t.Errorf("Selected() = %q", got)
	}

	tr.Reveal("/elsewhere/x.go")
	if got := tr.Selected(); got != filepath.Join("dir", "a.go") {
		t.Errorf("Reveal outside the workspace moved the cursor to %q", got)
	}
}

func TestTree_H_CollapsesParent(t *testing.T) {
	tr, _ := newTestTree(t, "dir/a.go", "b.go")

	tr, _ = tr.Update(key("j"))
	tr, _ = tr.Update(key("h"))
	if got := tr.Selected(); got != "dir" {
		t.Errorf("Selected() = %q after h, want dir", got)
	}
	if !tr.collapsed["dir"] {
		t.Error("dir should be collapsed")
	}
}

func TestTree_E_TogglesFileManager(t *testing.T) {
	tr, _ := newTestTree(t, "a.go")
	_, cmd := tr.Update(key("e"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(ToggleFileManagerMsg); !ok {
		t.Errorf("got %T, want ToggleFileManagerMsg", cmd())
	}
}

func TestTree_RefreshKeepsSelection(t *testing.T) {
	tr, root := newTestTree(t, "a.go", "c.go")
	tr, _ = tr.Update(key("j"))

	os.WriteFile(filepath.Join(root, "b.go"), nil, 0644)
	tr.Refresh()

	if got := tr.Selected(); got != "c.go" {
		t.Errorf("Selected() = %q after refresh, want c.go", got)
	}
}
