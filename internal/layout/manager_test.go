package layout

import (
	"reflect"
	"testing"
)

type fakeChrome struct {
	visible   [3]bool
	maximized bool
	calls     []string
}

func newFakeChrome() *fakeChrome {
	return &fakeChrome{visible: [3]bool{true, true, true}}
}

func (f *fakeChrome) Visible(r Region) bool { return f.visible[r] }

func (f *fakeChrome) SetVisible(r Region, v bool) {
	f.visible[r] = v
	if v {
		f.calls = append(f.calls, "show "+r.String())
	} else {
		f.calls = append(f.calls, "hide "+r.String())
	}
}

func (f *fakeChrome) Maximize() {
	f.maximized = true
	f.visible[Sidebar] = false
	f.visible[SecondarySidebar] = false
	f.calls = append(f.calls, "maximize")
}

func (f *fakeChrome) Unmaximize() {
	f.maximized = false
	f.calls = append(f.calls, "unmaximize")
}

func TestShowUnshow_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		maximize bool
		// visibility of every region after Unshow
		want [3]bool
	}{
		{"keep", Keep, false, [3]bool{true, true, true}},
		{"hide", Hide, false, [3]bool{false, false, false}},
		{"hide-then-restore", HideRestore, false, [3]bool{true, true, true}},
		{"keep maximized", Keep, true, [3]bool{true, true, true}},
		{"hide maximized", Hide, true, [3]bool{false, false, false}},
		{"hide-then-restore maximized", HideRestore, true, [3]bool{true, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeChrome()
			p := Policies{Sidebar: tt.policy, Panel: tt.policy, SecondarySidebar: tt.policy}

			rs := Show(c, p, tt.maximize)
			Unshow(c, rs)

			if c.visible != tt.want {
				t.Errorf("visible = %v, want %v", c.visible, tt.want)
			}
			if c.maximized {
				t.Error("still maximized after Unshow")
			}
		})
	}
}

func TestShow_HidesWithoutMaximize(t *testing.T) {
	c := newFakeChrome()
	rs := Show(c, Policies{Sidebar: Hide, Panel: Keep, SecondarySidebar: HideRestore}, false)

	if want := [3]bool{false, true, false}; c.visible != want {
		t.Errorf("visible = %v, want %v", c.visible, want)
	}
	want := []string{"hide sidebar", "hide secondary_sidebar"}
	if !reflect.DeepEqual(c.calls, want) {
		t.Errorf("calls = %q, want %q", c.calls, want)
	}
	if !rs.Hidden(Sidebar) {
		t.Error("sidebar should be recorded as hidden")
	}
	if rs.Hidden(Panel) {
		t.Error("panel should not be recorded as hidden")
	}
	if rs.Maximized() {
		t.Error("restore should not be maximized")
	}
}

func TestShow_MaximizeReopensKeptSidebars(t *testing.T) {
	c := newFakeChrome()
	Show(c, Policies{Sidebar: Keep, Panel: Keep, SecondarySidebar: Hide}, true)

	want := []string{"maximize", "show sidebar"}
	if !reflect.DeepEqual(c.calls, want) {
		t.Errorf("calls = %q, want %q", c.calls, want)
	}
	if !c.visible[Sidebar] || c.visible[SecondarySidebar] || !c.visible[Panel] {
		t.Errorf("visible = %v, want [true true false]", c.visible)
	}
}

func TestShow_PanelIndependentOfMaximize(t *testing.T) {
	for _, maximize := range []bool{false, true} {
		c := newFakeChrome()
		rs := Show(c, Policies{Panel: HideRestore}, maximize)
		if c.visible[Panel] {
			t.Fatalf("maximize=%v: panel still visible after Show", maximize)
		}

		Unshow(c, rs)
		if !c.visible[Panel] {
			t.Errorf("maximize=%v: panel not restored", maximize)
		}
	}
}

func TestUnshow_DoesNotShowRegionThatWasHidden(t *testing.T) {
	c := newFakeChrome()
	c.visible[Sidebar] = false

	rs := Show(c, Policies{Sidebar: HideRestore}, false)
	if rs.Hidden(Sidebar) {
		t.Error("an already hidden sidebar should not be recorded")
	}

	Unshow(c, rs)
	if c.visible[Sidebar] {
		t.Error("sidebar shown although it was hidden before Show")
	}
}

func TestUnshow_ZeroRestoreIsNoop(t *testing.T) {
	c := newFakeChrome()
	Unshow(c, Restore{})
	if len(c.calls) != 0 {
		t.Errorf("calls = %q, want none", c.calls)
	}
}

func TestRevert_UndoesEveryPolicy(t *testing.T) {
	c := newFakeChrome()
	rs := Show(c, Policies{Sidebar: Hide, Panel: HideRestore, SecondarySidebar: Keep}, true)
	if c.visible[Sidebar] {
		t.Fatal("sidebar visible after Show")
	}

	Revert(c, rs)
	if want := [3]bool{true, true, true}; c.visible != want {
		t.Errorf("visible = %v, want %v", c.visible, want)
	}
	if c.maximized {
		t.Error("still maximized after Revert")
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{Keep, Hide, HideRestore} {
		got, err := ParsePolicy(p.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Errorf("ParsePolicy(%q) = %v, want %v", p.String(), got, p)
		}
	}

	if _, err := ParsePolicy("sometimes"); err == nil {
		t.Error("expected an error for an unknown policy")
	}
}

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()
	if p.For(Sidebar) != Keep || p.For(Panel) != Keep {
		t.Errorf("sidebar, panel = %v, %v, want keep", p.For(Sidebar), p.For(Panel))
	}
	if p.For(SecondarySidebar) != Hide {
		t.Errorf("secondary_sidebar = %v, want hide", p.For(SecondarySidebar))
	}
	if got := p.With(Panel, HideRestore).For(Panel); got != HideRestore {
		t.Errorf("With(Panel, HideRestore) = %v", got)
	}
}
