// Package layout hides and restores editor chrome around the file manager.
package layout

// Chrome is the part of the host that owns region visibility.
type Chrome interface {
	Visible(r Region) bool
	SetVisible(r Region, visible bool)
	// Maximize hides both sidebars and gives the document area the space.
	Maximize()
	// Unmaximize leaves maximized mode. Region visibility set while
	// maximized is kept.
	Unmaximize()
}

// Restore records what Show changed so Unshow can undo exactly that.
// The zero value restores nothing.
type Restore struct {
	policies  Policies
	maximized bool
	// was holds the visibility of each region before Show ran.
	was [3]bool
	// hidden marks regions Show forced hidden.
	hidden [3]bool
}

// Maximized reports whether Show entered maximized mode.
func (r Restore) Maximized() bool {
	return r.maximized
}

// Hidden reports whether Show forced region reg hidden.
func (r Restore) Hidden(reg Region) bool {
	return r.hidden[reg]
}

// Show applies policies to chrome before the file manager is shown.
//
// With maximize, the host hides both sidebars and any sidebar whose policy
// is keep is reopened if it was visible. Without maximize, regions whose
// policy is hide or hide-then-restore are hidden. The bottom panel follows
// its own policy either way.
func Show(c Chrome, policies Policies, maximize bool) Restore {
	rs := Restore{policies: policies, maximized: maximize}
	for _, reg := range Regions {
		rs.was[reg] = c.Visible(reg)
	}

	if maximize {
		c.Maximize()
		for _, reg := range []Region{Sidebar, SecondarySidebar} {
			if policies.For(reg) == Keep {
				if rs.was[reg] {
					c.SetVisible(reg, true)
				}
				continue
			}
			rs.hidden[reg] = rs.was[reg]
		}
	} else {
		for _, reg := range []Region{Sidebar, SecondarySidebar} {
			hideRegion(c, &rs, reg)
		}
	}
	hideRegion(c, &rs, Panel)
	return rs
}

func hideRegion(c Chrome, rs *Restore, reg Region) {
	if rs.policies.For(reg) == Keep || !rs.was[reg] {
		return
	}
	c.SetVisible(reg, false)
	rs.hidden[reg] = true
}

// Unshow undoes Show: regions with policy hide-then-restore get their
// previous visibility back, everything else is left as it is.
func Unshow(c Chrome, rs Restore) {
	if rs.maximized {
		c.Unmaximize()
	}
	for _, reg := range Regions {
		if rs.policies.For(reg) != HideRestore || !rs.hidden[reg] {
			continue
		}
		c.SetVisible(reg, rs.was[reg])
	}
}

// Revert undoes everything Show changed regardless of policy. It is used
// when the file manager failed to start.
func Revert(c Chrome, rs Restore) {
	if rs.maximized {
		c.Unmaximize()
	}
	for _, reg := range Regions {
		if rs.hidden[reg] {
			c.SetVisible(reg, rs.was[reg])
		}
	}
}
