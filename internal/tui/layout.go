package tui

import (
	"github.com/soundbrowse/soundbrowse/internal/windowset"
)

// Window ids for the composed screen regions.
const (
	windowHeader  windowset.ID = "header"
	windowBrowser windowset.ID = "browser"
	windowStatus  windowset.ID = "status"
	windowPrompt  windowset.ID = "prompt"
	windowHelp    windowset.ID = "help"
	windowInspect windowset.ID = "inspect"
)

// z-order bands: base windows first, modals on top
const (
	zBase  = 0
	zModal = 10
)

// newWindowSet registers every screen region with its layout function. Each
// rectangle is a pure function of the terminal size, which keeps resizing
// deterministic (resize A -> B -> A reproduces A's layout exactly).
func newWindowSet(minRows, minCols int) (*windowset.Set, error) {
	s := windowset.New(minRows, minCols)

	register := func(id windowset.ID, modal bool, z int, layout windowset.LayoutFunc) error {
		return s.Register(id, modal, z, layout)
	}

	if err := register(windowHeader, false, zBase, func(rows, cols int) windowset.Rect {
		return windowset.Rect{X: 0, Y: 0, Width: cols, Height: 2}
	}); err != nil {
		return nil, err
	}
	if err := register(windowBrowser, false, zBase, func(rows, cols int) windowset.Rect {
		return windowset.Rect{X: 0, Y: 2, Width: cols, Height: rows - 3}
	}); err != nil {
		return nil, err
	}
	if err := register(windowStatus, false, zBase, func(rows, cols int) windowset.Rect {
		return windowset.Rect{X: 0, Y: rows - 1, Width: cols, Height: 1}
	}); err != nil {
		return nil, err
	}
	if err := register(windowPrompt, true, zModal, func(rows, cols int) windowset.Rect {
		width := cols / 2
		if width < 40 {
			width = cols - 4
		}
		height := 12
		if height > rows-2 {
			height = rows - 2
		}
		return windowset.Rect{X: (cols - width) / 2, Y: (rows - height) / 2, Width: width, Height: height}
	}); err != nil {
		return nil, err
	}
	if err := register(windowHelp, true, zModal, func(rows, cols int) windowset.Rect {
		return windowset.Rect{X: 2, Y: 1, Width: cols - 4, Height: rows - 2}
	}); err != nil {
		return nil, err
	}
	if err := register(windowInspect, true, zModal, func(rows, cols int) windowset.Rect {
		return windowset.Rect{X: 2, Y: 1, Width: cols - 4, Height: rows - 2}
	}); err != nil {
		return nil, err
	}

	return s, nil
}
