package layout

import "fmt"

// Region is a piece of editor chrome that the file manager can hide.
type Region int

const (
	Sidebar Region = iota
	Panel
	SecondarySidebar
)

// Regions lists every region in the order they are applied.
var Regions = []Region{Sidebar, Panel, SecondarySidebar}

func (r Region) String() string {
	switch r {
	case Sidebar:
		return "sidebar"
	case Panel:
		return "panel"
	case SecondarySidebar:
		return "secondary_sidebar"
	}
	return fmt.Sprintf("region(%d)", int(r))
}

// Policy governs what happens to a region while the file manager is shown.
type Policy int

const (
	// Keep leaves the region alone.
	Keep Policy = iota
	// Hide hides the region on show and never brings it back.
	Hide
	// HideRestore hides the region on show and restores it on hide.
	HideRestore
)

func (p Policy) String() string {
	switch p {
	case Keep:
		return "keep"
	case Hide:
		return "hide"
	case HideRestore:
		return "hide-then-restore"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy accepts the names produced by String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "keep":
		return Keep, nil
	case "hide":
		return Hide, nil
	case "hide-then-restore":
		return HideRestore, nil
	}
	return Keep, fmt.Errorf("unknown panel policy %q (want keep, hide or hide-then-restore)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Policies holds one policy per region.
type Policies struct {
	Sidebar          Policy
	Panel            Policy
	SecondarySidebar Policy
}

// DefaultPolicies keeps the sidebar and bottom panel and hides the
// secondary sidebar.
func DefaultPolicies() Policies {
	return Policies{
		Sidebar:          Keep,
		Panel:            Keep,
		SecondarySidebar: Hide,
	}
}

// For returns the policy for r.
func (p Policies) For(r Region) Policy {
	switch r {
	case Sidebar:
		return p.Sidebar
	case Panel:
		return p.Panel
	case SecondarySidebar:
		return p.SecondarySidebar
	}
	return Keep
}

// With returns a copy of p with r set to policy.
func (p Policies) With(r Region, policy Policy) Policies {
	switch r {
	case Sidebar:
		p.Sidebar = policy
	case Panel:
		p.Panel = policy
	case SecondarySidebar:
		p.SecondarySidebar = policy
	}
	return p
}
