package tmux

import "github.com/ankittk/agentsquad/pkg/models"

// SplitDirection is the direction a new pane is split off in.
type SplitDirection int

const (
	SplitVertical SplitDirection = iota
	SplitHorizontal
)

func (d SplitDirection) String() string {
	if d == SplitHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// flag is the split-window flag for d. tmux -h places panes side by side, -v stacks them.
func (d SplitDirection) flag() string {
	if d == SplitHorizontal {
		return "-h"
	}
	return "-v"
}

// SplitDirectionFor returns the split used to create the pane at index (>= 1) of a squad of total
// agents. Unknown modes behave like LayoutAuto.
func SplitDirectionFor(mode models.LayoutMode, index, total int) SplitDirection {
	switch mode {
	case models.LayoutGrid:
		if index%2 == 1 {
			return SplitHorizontal
		}
		return SplitVertical
	case models.LayoutMainVertical:
		if index == 1 {
			return SplitVertical
		}
		return SplitHorizontal
	}
	switch {
	case total <= 2:
		return SplitVertical
	case total <= 4:
		if index%2 == 1 {
			return SplitVertical
		}
		return SplitHorizontal
	default:
		if index%3 == 1 {
			return SplitVertical
		}
		return SplitHorizontal
	}
}

// Layout names understood by tmux select-layout.
const (
	LayoutTiled          = "tiled"
	LayoutMainVertical   = "main-vertical"
	LayoutEvenHorizontal = "even-horizontal"
)

// FinalLayout returns the tiling applied once all panes exist.
func FinalLayout(mode models.LayoutMode, total int) string {
	switch mode {
	case models.LayoutGrid:
		return LayoutTiled
	case models.LayoutMainVertical:
		return LayoutMainVertical
	}
	if total <= 2 {
		return LayoutEvenHorizontal
	}
	return LayoutTiled
}
