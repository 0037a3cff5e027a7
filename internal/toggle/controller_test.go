package toggle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pfassina/scout/internal/chooser"
	"github.com/pfassina/scout/internal/config"
	"github.com/pfassina/scout/internal/focus"
	"github.com/pfassina/scout/internal/layout"
	"github.com/pfassina/scout/internal/resolve"
)

type fakeTerm struct {
	id    int
	group int
}

func (t *fakeTerm) Group() int { return t.group }

type openCall struct {
	path    string
	preview bool
}

type fakeHost struct {
	visible   [3]bool
	maximized bool
	active    string
	roots     []string

	// groups lists the document tabs per group; live terminals are added
	// by TabGroups.
	groups []focus.TabGroup

	specs    []Spec
	terms    []*fakeTerm
	live     map[int]bool
	focused  bool
	spawnErr error

	opens      []openCall
	failOpen   map[string]bool
	focusedGrp []int
	recent     []int
	disposed   []int
	calls      []string
	errors     []string
	warnings   []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		visible: [3]bool{true, true, true},
		groups:  []focus.TabGroup{{ID: 0, Documents: 1}},
		live:    map[int]bool{},
	}
}

func (h *fakeHost) Visible(r layout.Region) bool { return h.visible[r] }
func (h *fakeHost) SetVisible(r layout.Region, v bool) {
	h.visible[r] = v
}
func (h *fakeHost) Maximize() {
	h.maximized = true
	h.visible[layout.Sidebar] = false
	h.visible[layout.SecondarySidebar] = false
}
func (h *fakeHost) Unmaximize() { h.maximized = false }

func (h *fakeHost) TabGroups() []focus.TabGroup {
	out := make([]focus.TabGroup, len(h.groups))
	copy(out, h.groups)
	for _, t := range h.terms {
		if !h.live[t.id] {
			continue
		}
		for i := range out {
			if out[i].ID == t.group {
				out[i].Terminals++
			}
		}
	}
	return out
}

func (h *fakeHost) FocusGroup(id int) error {
	h.focusedGrp = append(h.focusedGrp, id)
	return nil
}

func (h *fakeHost) OpenDocument(_ context.Context, path string, preview bool) error {
	h.opens = append(h.opens, openCall{path, preview})
	if h.failOpen[path] {
		return errors.New("no such file")
	}
	return nil
}

func (h *fakeHost) ActiveDocument() string   { return h.active }
func (h *fakeHost) WorkspaceRoots() []string { return h.roots }

func (h *fakeHost) OpenTerminal(spec Spec) (Terminal, error) {
	if h.spawnErr != nil {
		return nil, h.spawnErr
	}
	t := &fakeTerm{id: len(h.terms), group: 0}
	h.specs = append(h.specs, spec)
	h.terms = append(h.terms, t)
	h.live[t.id] = true
	h.focused = true
	h.calls = append(h.calls, "open")
	return t, nil
}

// FocusTerminal ignores terminals that were disposed, like the app does.
func (h *fakeHost) FocusTerminal(t Terminal) {
	if !h.live[t.(*fakeTerm).id] {
		return
	}
	h.focused = true
	h.calls = append(h.calls, "focus")
}

func (h *fakeHost) TerminalFocused(t Terminal) bool {
	return h.live[t.(*fakeTerm).id] && h.focused
}

func (h *fakeHost) Dispose(t Terminal) {
	ft := t.(*fakeTerm)
	h.live[ft.id] = false
	h.focused = false
	h.disposed = append(h.disposed, ft.id)
	h.calls = append(h.calls, "dispose")
}

func (h *fakeHost) ShowRecentTab(group int) error {
	h.recent = append(h.recent, group)
	h.calls = append(h.calls, "recent")
	return nil
}

func (h *fakeHost) ShowError(msg string)   { h.errors = append(h.errors, msg) }
func (h *fakeHost) ShowWarning(msg string) { h.warnings = append(h.warnings, msg) }

// exit simulates terminal i going away.
func (h *fakeHost) exit(i int) {
	h.live[h.terms[i].id] = false
	h.specs[i].OnExit()
}

type fakeSettings struct {
	src config.MapSource
}

func (f *fakeSettings) Load() config.Result {
	s, w := config.Resolve(f.src)
	return config.Result{Settings: s, Warnings: w}
}

type fakeRecorder struct {
	paths []string
}

func (r *fakeRecorder) Record(paths ...string) error {
	r.paths = append(r.paths, paths...)
	return nil
}

var finder = fakeFinderMap{"yazi": "/usr/bin/yazi", "bash": "/bin/bash"}

type fakeFinderMap map[string]string

func (f fakeFinderMap) Find(_ context.Context, name string) (string, error) {
	if p, ok := f[name]; ok {
		return p, nil
	}
	return "", resolve.ErrNotFound
}

func newController(t *testing.T, h *fakeHost, src config.MapSource) (*Controller, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	c := New(h, Options{
		Settings:   &fakeSettings{src: src},
		Finder:     finder,
		Recorder:   rec,
		GOOS:       "linux",
		ChooserDir: t.TempDir(),
		Home:       "/home/me",
	})
	return c, rec
}

func mustToggle(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
}

func writeChooser(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func wantOpens(t *testing.T, h *fakeHost, want ...openCall) {
	t.Helper()
	if len(want) == 0 && len(h.opens) == 0 {
		return
	}
	if !reflect.DeepEqual(h.opens, want) {
		t.Errorf("opens = %v, want %v", h.opens, want)
	}
}

func TestOpenWithActiveDocument(t *testing.T) {
	h := newFakeHost()
	h.active = "/a/b/c.txt"
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	if got := c.State(); got != OpenFocused {
		t.Errorf("State = %v, want %v", got, OpenFocused)
	}

	if len(h.specs) != 1 {
		t.Fatalf("spawned %d terminals, want 1", len(h.specs))
	}
	spec := h.specs[0]
	if spec.Dir != "/a/b" {
		t.Errorf("Dir = %q, want /a/b", spec.Dir)
	}
	if spec.Name != TerminalName {
		t.Errorf("Name = %q, want %q", spec.Name, TerminalName)
	}
	if spec.Argv[0] != "/bin/bash" || spec.Argv[1] != "-c" {
		t.Errorf("Argv = %q, want bash -c", spec.Argv)
	}
	if !strings.Contains(spec.Argv[2], chooser.Flag+" "+c.Session().ChooserPath()) {
		t.Errorf("command %q lacks the chooser flag", spec.Argv[2])
	}
	if !strings.Contains(spec.Argv[2], "/a/b/c.txt") {
		t.Errorf("command %q lacks the active document", spec.Argv[2])
	}
	if got := c.Session().Previous(); got != "/a/b/c.txt" {
		t.Errorf("Previous = %q", got)
	}
}

func TestWorkingDirFallbacks(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, nil)
	mustToggle(t, c)
	if h.specs[0].Dir != "/home/me" {
		t.Errorf("Dir = %q, want home", h.specs[0].Dir)
	}
	if strings.Contains(h.specs[0].Argv[2], "/home/me") {
		t.Errorf("command %q should not name a document", h.specs[0].Argv[2])
	}

	h = newFakeHost()
	h.roots = []string{"/work/one", "/work/two"}
	c, _ = newController(t, h, nil)
	mustToggle(t, c)
	if h.specs[0].Dir != "/work/one" {
		t.Errorf("Dir = %q, want first workspace root", h.specs[0].Dir)
	}
}

func TestToggleTwiceRestoresLayout(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, config.MapSource{
		config.KeySidebar:          "hide-then-restore",
		config.KeyPanel:            "hide",
		config.KeySecondarySidebar: "keep",
	})

	mustToggle(t, c)
	if want := [3]bool{false, false, true}; h.visible != want {
		t.Errorf("visible after open = %v, want %v", h.visible, want)
	}

	mustToggle(t, c)
	if !reflect.DeepEqual(h.disposed, []int{0}) {
		t.Errorf("disposed = %v, want [0]", h.disposed)
	}
	h.exit(0)

	if got := c.State(); got != Closed {
		t.Errorf("State = %v, want closed", got)
	}
	if !h.visible[layout.Sidebar] {
		t.Error("hide-then-restore sidebar did not come back")
	}
	if h.visible[layout.Panel] {
		t.Error("hide panel should stay hidden")
	}
	if !h.visible[layout.SecondarySidebar] {
		t.Error("keep secondary sidebar was touched")
	}
}

func TestToggleWhileClosingOpensFreshSession(t *testing.T) {
	h := newFakeHost()
	h.active = "/a/doc.txt"
	c, _ := newController(t, h, config.MapSource{
		config.KeySidebar: "hide-then-restore",
	})

	mustToggle(t, c)
	first := c.Session()
	mustToggle(t, c)

	// The terminal is disposed but has not exited yet.
	if got := c.State(); got != Closed {
		t.Fatalf("State while closing = %v, want closed", got)
	}

	mustToggle(t, c)
	if len(h.specs) != 2 {
		t.Fatalf("spawned %d terminals, want 2", len(h.specs))
	}
	second := c.Session()
	if second == nil || second.Token() == first.Token() {
		t.Fatal("expected a new session")
	}
	if got := c.State(); got != OpenFocused {
		t.Errorf("State = %v, want %v", got, OpenFocused)
	}
	if h.visible[layout.Sidebar] {
		t.Error("sidebar should be hidden by the new session")
	}
	if !reflect.DeepEqual(h.disposed, []int{0}) {
		t.Errorf("disposed = %v, want [0]", h.disposed)
	}

	// The late exit of the first session only drains its own file.
	writeChooser(t, first.ChooserPath(), "/stale.txt\n")
	h.exit(0)
	if c.Session() != second {
		t.Error("late exit replaced the new session")
	}
	if fileExists(first.ChooserPath()) {
		t.Error("first chooser file not drained")
	}
	wantOpens(t, h)
	if h.visible[layout.Sidebar] {
		t.Error("late exit restored the layout of the new session")
	}

	h.exit(1)
	wantOpens(t, h, openCall{"/a/doc.txt", false})
	if !h.visible[layout.Sidebar] {
		t.Error("sidebar not restored after the new session exited")
	}
}

func TestMaximizeRoundTrip(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, config.MapSource{
		config.KeyMaximize: true,
		config.KeySidebar:  "keep",
	})

	mustToggle(t, c)
	if !h.maximized {
		t.Error("not maximized")
	}
	if !h.visible[layout.Sidebar] {
		t.Error("kept sidebar should be reopened")
	}
	if h.visible[layout.SecondarySidebar] {
		t.Error("secondary sidebar should be hidden")
	}

	mustToggle(t, c)
	h.exit(0)
	if h.maximized {
		t.Error("still maximized after close")
	}
}

func TestChooserSelectionOpensInOrder(t *testing.T) {
	h := newFakeHost()
	h.active = "/prev/doc.txt"
	c, rec := newController(t, h, nil)

	mustToggle(t, c)
	path := c.Session().ChooserPath()
	writeChooser(t, path, "/x/y.txt\n/x/z.txt\n")

	h.exit(0)

	wantOpens(t, h, openCall{"/x/y.txt", false}, openCall{"/x/z.txt", false})
	if want := []string{"/x/y.txt", "/x/z.txt"}; !reflect.DeepEqual(rec.paths, want) {
		t.Errorf("recorded %q, want %q", rec.paths, want)
	}
	if fileExists(path) {
		t.Error("chooser file not deleted")
	}
	if c.Session() != nil {
		t.Error("session not cleared")
	}
}

func TestNoSelectionRestoresPrevious(t *testing.T) {
	h := newFakeHost()
	h.active = "/prev/doc.txt"
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	h.exit(0)

	wantOpens(t, h, openCall{"/prev/doc.txt", false})
	if len(h.focusedGrp) != 0 {
		t.Errorf("focused groups %v, want none", h.focusedGrp)
	}
}

func TestEmptyHostGroupFocusesFirstNonEmpty(t *testing.T) {
	h := newFakeHost()
	h.active = "/prev/doc.txt"
	h.groups = []focus.TabGroup{{ID: 0}, {ID: 1}, {ID: 2, Documents: 3}}
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	h.exit(0)

	if !reflect.DeepEqual(h.focusedGrp, []int{2}) {
		t.Errorf("focused groups = %v, want [2]", h.focusedGrp)
	}
	wantOpens(t, h)
}

func TestSelectionFailuresReportedIndividually(t *testing.T) {
	h := newFakeHost()
	h.active = "/prev/doc.txt"
	h.failOpen = map[string]bool{"/x/gone.txt": true}
	c, rec := newController(t, h, nil)

	mustToggle(t, c)
	writeChooser(t, c.Session().ChooserPath(), "/x/a.txt\n/x/gone.txt\n\n/x/b.txt\n")
	h.exit(0)

	if len(h.opens) != 3 {
		t.Fatalf("opens = %v, want 3", h.opens)
	}
	if h.opens[2].path != "/x/b.txt" {
		t.Errorf("last open = %q, want /x/b.txt", h.opens[2].path)
	}
	if len(h.errors) != 1 || !strings.Contains(h.errors[0], "/x/gone.txt") {
		t.Errorf("errors = %q, want one naming /x/gone.txt", h.errors)
	}
	if want := []string{"/x/a.txt", "/x/b.txt"}; !reflect.DeepEqual(rec.paths, want) {
		t.Errorf("recorded %q, want %q", rec.paths, want)
	}
}

func TestAllSelectionsFailRestoresPrevious(t *testing.T) {
	h := newFakeHost()
	h.active = "/prev/doc.txt"
	h.failOpen = map[string]bool{"/x/gone.txt": true}
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	writeChooser(t, c.Session().ChooserPath(), "/x/gone.txt\n")
	h.exit(0)

	wantOpens(t, h, openCall{"/x/gone.txt", false}, openCall{"/prev/doc.txt", false})
}

func TestExecutableNotFound(t *testing.T) {
	h := newFakeHost()
	c := New(h, Options{
		Settings:   &fakeSettings{src: config.MapSource{config.KeySidebar: "hide"}},
		Finder:     fakeFinderMap{"bash": "/bin/bash"},
		Recorder:   &fakeRecorder{},
		GOOS:       "linux",
		ChooserDir: t.TempDir(),
	})

	err := c.Toggle(context.Background())
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if got := c.State(); got != Closed {
		t.Errorf("State = %v, want closed", got)
	}
	if len(h.specs) != 0 {
		t.Error("terminal spawned without an executable")
	}
	if len(h.errors) != 1 {
		t.Errorf("errors = %q, want one", h.errors)
	}
	if !h.visible[layout.Sidebar] {
		t.Error("layout changed although nothing opened")
	}
}

func TestSpawnFailureRestoresLayout(t *testing.T) {
	h := newFakeHost()
	h.spawnErr = errors.New("pty: out of descriptors")
	c, _ := newController(t, h, config.MapSource{config.KeySidebar: "hide"})

	if err := c.Toggle(context.Background()); err == nil {
		t.Fatal("expected the spawn error")
	}
	if c.Session() != nil {
		t.Error("session recorded after a failed spawn")
	}
	if len(h.errors) != 1 {
		t.Errorf("errors = %q, want one", h.errors)
	}
	if !h.visible[layout.Sidebar] {
		t.Error("even a hide policy is reverted")
	}
}

func TestBusyGuard(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, nil)
	c.busy.Store(true)

	if err := c.Toggle(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}
	if len(h.specs) != 0 {
		t.Error("busy toggle spawned a terminal")
	}
	if len(h.warnings) != 1 {
		t.Errorf("warnings = %q, want one", h.warnings)
	}

	c.busy.Store(false)
	mustToggle(t, c)
}

func TestUnfocusedToggleRefocuses(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	sess := c.Session()
	h.focused = false
	if got := c.State(); got != OpenUnfocused {
		t.Fatalf("State = %v, want %v", got, OpenUnfocused)
	}

	mustToggle(t, c)
	if c.Session() != sess {
		t.Error("refocus replaced the session")
	}
	if got := c.State(); got != OpenFocused {
		t.Errorf("State = %v, want %v", got, OpenFocused)
	}
	if len(h.specs) != 1 || len(h.disposed) != 0 {
		t.Errorf("specs = %d, disposed = %v; want 1 and none", len(h.specs), h.disposed)
	}
}

func TestUnfocusedToggleRespawns(t *testing.T) {
	h := newFakeHost()
	h.active = "/a/first.txt"
	c, _ := newController(t, h, config.MapSource{
		config.KeyUnfocusedToggle: "respawn",
		config.KeySidebar:         "hide-then-restore",
	})

	mustToggle(t, c)
	first := c.Session()
	h.focused = false
	h.active = "/b/second.txt"

	mustToggle(t, c)
	second := c.Session()
	if second == nil {
		t.Fatal("no session after respawn")
	}
	if first.Token() == second.Token() || first.ChooserPath() == second.ChooserPath() {
		t.Error("respawn reused the old session identity")
	}
	if second.Dir() != "/b" {
		t.Errorf("Dir = %q, want /b", second.Dir())
	}
	if !reflect.DeepEqual(h.disposed, []int{0}) {
		t.Errorf("disposed = %v, want [0]", h.disposed)
	}
	if h.visible[layout.Sidebar] {
		t.Error("sidebar should stay hidden")
	}

	// The superseded session exits late: it drains only its own file and
	// leaves the new session alone.
	writeChooser(t, first.ChooserPath(), "/stale.txt\n")
	writeChooser(t, second.ChooserPath(), "/fresh.txt\n")
	h.exit(0)

	if c.Session() != second {
		t.Error("late exit replaced the new session")
	}
	if fileExists(first.ChooserPath()) {
		t.Error("first chooser file not drained")
	}
	if !fileExists(second.ChooserPath()) {
		t.Error("second chooser file drained too early")
	}
	wantOpens(t, h)
	if h.visible[layout.Sidebar] {
		t.Error("late exit restored the layout")
	}

	h.exit(1)
	wantOpens(t, h, openCall{"/fresh.txt", false})
	if !h.visible[layout.Sidebar] {
		t.Error("sidebar not restored")
	}
}

func TestCloseShowsRecentTabFirst(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	mustToggle(t, c)
	if want := []string{"open", "recent", "dispose"}; !reflect.DeepEqual(h.calls, want) {
		t.Errorf("calls = %q, want %q", h.calls, want)
	}
}

func TestCloseOnlyTabDisposes(t *testing.T) {
	h := newFakeHost()
	h.groups = []focus.TabGroup{{ID: 0}}
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	mustToggle(t, c)
	if want := []string{"open", "dispose"}; !reflect.DeepEqual(h.calls, want) {
		t.Errorf("calls = %q, want %q", h.calls, want)
	}
}

func TestConfigDirExported(t *testing.T) {
	dir := t.TempDir()
	h := newFakeHost()
	c, _ := newController(t, h, config.MapSource{config.KeyYaziConfigPath: dir})

	mustToggle(t, c)
	if want := []string{"YAZI_CONFIG_HOME=" + dir}; !reflect.DeepEqual(h.specs[0].Env, want) {
		t.Errorf("Env = %q, want %q", h.specs[0].Env, want)
	}
}

func TestInvalidConfigDirWarns(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, config.MapSource{
		config.KeyYaziConfigPath: filepath.Join(t.TempDir(), "missing"),
	})

	mustToggle(t, c)
	if len(h.specs[0].Env) != 0 {
		t.Errorf("Env = %q, want none", h.specs[0].Env)
	}
	if len(h.warnings) != 1 {
		t.Errorf("warnings = %q, want one", h.warnings)
	}
}

func TestShellFallbackWarns(t *testing.T) {
	h := newFakeHost()
	c := New(h, Options{
		Settings:   &fakeSettings{},
		Finder:     fakeFinderMap{"yazi": "/usr/bin/yazi"},
		GOOS:       "linux",
		ChooserDir: t.TempDir(),
	})

	mustToggle(t, c)
	if h.specs[0].Argv[0] != resolve.FallbackShell {
		t.Errorf("shell = %q, want %q", h.specs[0].Argv[0], resolve.FallbackShell)
	}
	if len(h.warnings) != 1 {
		t.Errorf("warnings = %q, want one", h.warnings)
	}
}

func TestChooserReadErrorWarns(t *testing.T) {
	h := newFakeHost()
	h.active = "/prev/doc.txt"
	c, _ := newController(t, h, nil)

	mustToggle(t, c)
	// A directory at the chooser path cannot be read as a file.
	if err := os.Mkdir(c.Session().ChooserPath(), 0755); err != nil {
		t.Fatal(err)
	}
	h.exit(0)

	if len(h.warnings) != 1 {
		t.Errorf("warnings = %q, want one", h.warnings)
	}
	wantOpens(t, h, openCall{"/prev/doc.txt", false})
}

func TestShutdownRestoresLayoutAndDiscardsSelection(t *testing.T) {
	h := newFakeHost()
	c, rec := newController(t, h, config.MapSource{
		config.KeySidebar: "hide-then-restore",
	})

	mustToggle(t, c)
	if h.visible[layout.Sidebar] {
		t.Fatal("sidebar visible after open")
	}
	path := c.Session().ChooserPath()
	writeChooser(t, path, "/w/a.go\n")

	c.Shutdown()
	if got := c.State(); got != Closed || c.Session() != nil {
		t.Errorf("State = %v, session = %v; want closed and nil", got, c.Session())
	}
	if !h.visible[layout.Sidebar] {
		t.Error("sidebar not restored")
	}
	if !reflect.DeepEqual(h.disposed, []int{0}) {
		t.Errorf("disposed = %v, want [0]", h.disposed)
	}
	if fileExists(path) {
		t.Error("selection not discarded")
	}

	// The late exit callback of the retired session opens nothing.
	h.exit(0)
	wantOpens(t, h)
	if len(rec.paths) != 0 {
		t.Errorf("recorded %q, want nothing", rec.paths)
	}

	c.Shutdown()
}

func TestShutdownWhileClosingDisposesOnce(t *testing.T) {
	h := newFakeHost()
	c, _ := newController(t, h, config.MapSource{
		config.KeySidebar: "hide-then-restore",
	})

	mustToggle(t, c)
	mustToggle(t, c)
	c.Shutdown()

	if !reflect.DeepEqual(h.disposed, []int{0}) {
		t.Errorf("disposed = %v, want [0]", h.disposed)
	}
	if !h.visible[layout.Sidebar] {
		t.Error("sidebar not restored")
	}
	if c.Session() != nil {
		t.Error("session kept after Shutdown")
	}
}
