package app

// Layout computes the dimensions for each panel.
type Layout struct {
	TreeWidth   int
	EditorWidth int
	InfoWidth   int
	// Height is the height of the column row (tree, editor, info).
	Height int
	// PanelHeight is the content height of the bottom panel, without its
	// border row. Zero when the panel is hidden.
	PanelHeight  int
	StatusHeight int
}

// ComputeLayout calculates panel dimensions based on total width/height
// and whether each panel is visible. Each sidebar and the bottom panel is
// capped at a third of the space left for it.
func ComputeLayout(totalWidth, totalHeight int, showTree, showInfo, showPanel bool, treeWidth, infoWidth, panelHeight int) Layout {
	// During live resizes some terminals momentarily report 0 (or even negative)
	// dimensions; clamp to avoid propagating invalid sizes into panels.
	if totalWidth < 1 {
		totalWidth = 1
	}
	if totalHeight < 2 { // need at least 1 row for content + 1 for status
		totalHeight = 2
	}

	l := Layout{
		StatusHeight: 1,
		Height:       totalHeight - 1, // reserve 1 row for status bar
	}

	if showPanel && panelHeight > 0 {
		l.PanelHeight = panelHeight
		if limit := (l.Height - 1) / 3; l.PanelHeight > limit {
			l.PanelHeight = limit
		}
		if l.PanelHeight > 0 {
			l.Height -= l.PanelHeight + 1 // +1 for the border row
		}
	}

	remaining := totalWidth

	if showTree {
		l.TreeWidth = treeWidth
		if l.TreeWidth > remaining/3 {
			l.TreeWidth = remaining / 3
		}
		remaining -= l.TreeWidth
	}

	if showInfo {
		l.InfoWidth = infoWidth
		if l.InfoWidth > remaining/3 {
			l.InfoWidth = remaining / 3
		}
		remaining -= l.InfoWidth
	}

	l.EditorWidth = remaining
	// During extreme resizes the terminal can get very narrow; never force a
	// minimum width larger than the available space.
	if l.EditorWidth < 1 {
		l.EditorWidth = 1
	}

	return l
}
