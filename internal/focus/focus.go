// Package focus decides where focus goes after the file manager closes.
package focus

import (
	"context"
	"fmt"
)

// TabGroup summarizes one group of tabs in the document area.
type TabGroup struct {
	ID int
	// Documents counts the non-terminal tabs in the group.
	Documents int
	// Terminals counts the terminal tabs in the group.
	Terminals int
}

// Host is the part of the editor shell focus resolution needs.
type Host interface {
	TabGroups() []TabGroup
	FocusGroup(id int) error
	OpenDocument(ctx context.Context, path string, preview bool) error
}

// Outcome reports what Resolve did.
type Outcome int

const (
	// Untouched means a chosen document already took focus, or there was
	// nothing to return to.
	Untouched Outcome = iota
	// FocusedGroup means the first non-empty tab group got focus.
	FocusedGroup
	// ReopenedPrevious means the captured document was reopened.
	ReopenedPrevious
)

func (o Outcome) String() string {
	switch o {
	case Untouched:
		return "untouched"
	case FocusedGroup:
		return "focused-group"
	case ReopenedPrevious:
		return "reopened-previous"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Target is what the session captured at open time.
type Target struct {
	// Previous is the document that was active before the file manager
	// opened. Empty when none was.
	Previous string
	// Group is the tab group that hosted the file manager.
	Group int
}

// Resolve restores focus after the file manager closed. When chose is true
// the chosen documents already have focus and nothing happens. When the
// hosting group has no documents left, the first group with documents is
// focused instead of the previous document. The returned error is for
// logging only: failing to reopen a document that was closed or deleted in
// the meantime is expected.
func Resolve(ctx context.Context, h Host, t Target, chose bool) (Outcome, error) {
	if chose {
		return Untouched, nil
	}

	groups := h.TabGroups()
	if hostEmpty(groups, t.Group) {
		for _, g := range groups {
			if g.Documents == 0 {
				continue
			}
			if err := h.FocusGroup(g.ID); err != nil {
				return Untouched, fmt.Errorf("focus group %d: %w", g.ID, err)
			}
			return FocusedGroup, nil
		}
	}

	if t.Previous == "" {
		return Untouched, nil
	}
	if err := h.OpenDocument(ctx, t.Previous, false); err != nil {
		return Untouched, fmt.Errorf("reopen %s: %w", t.Previous, err)
	}
	return ReopenedPrevious, nil
}

// hostEmpty reports whether group id has no documents. A group that no
// longer exists counts as empty.
func hostEmpty(groups []TabGroup, id int) bool {
	for _, g := range groups {
		if g.ID == id {
			return g.Documents == 0
		}
	}
	return true
}
