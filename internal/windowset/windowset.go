package windowset

import (
	"errors"
	"fmt"
	"sort"
)

// Layout errors surfaced to the session layer as status text; none of them
// is fatal past startup.
var (
	ErrDuplicateWindow    = errors.New("window id already registered")
	ErrUnknownWindow      = errors.New("unknown window id")
	ErrModalAlreadyActive = errors.New("another modal window is active")
	ErrNoActiveModal      = errors.New("no modal window is active")
	ErrTooSmallTerminal   = errors.New("terminal is too small")
	ErrInvalidRect        = errors.New("window rectangle is invalid")
)

// ID names a registered window.
type ID string

// Rect is a window rectangle in cell coordinates, origin top-left.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0
}

// LayoutFunc computes a window's rectangle purely from the terminal size,
// so resizing is deterministic and idempotent regardless of prior layout.
type LayoutFunc func(rows, cols int) Rect

// Window is the registered state of one on-screen region.
type Window struct {
	ID      ID
	Rect    Rect
	Visible bool
	Modal   bool
	Z       int

	layout LayoutFunc
}

// Set owns every window by id: registration, visibility, z-order and the
// at-most-one-modal invariant. It holds no terminal handle itself; the
// rendering layer reads the visible windows each frame.
type Set struct {
	windows     map[ID]*Window
	minRows     int
	minCols     int
	rows        int
	cols        int
	activeModal ID
}

// New creates an empty set with the configured minimum usable geometry.
func New(minRows, minCols int) *Set {
	return &Set{
		windows: make(map[ID]*Window),
		minRows: minRows,
		minCols: minCols,
	}
}

// Register adds a window. Registering an id twice is a reported error, not
// a silent overwrite.
func (s *Set) Register(id ID, modal bool, z int, layout LayoutFunc) error {
	if _, exists := s.windows[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWindow, id)
	}
	window := &Window{ID: id, Modal: modal, Z: z, layout: layout}
	if s.rows > 0 && s.cols > 0 {
		window.Rect = layout(s.rows, s.cols)
	}
	s.windows[id] = window
	return nil
}

// Get looks a window up by handle, returning an explicit not-found result
// instead of a dangling reference.
func (s *Set) Get(id ID) (Window, bool) {
	window, ok := s.windows[id]
	if !ok {
		return Window{}, false
	}
	return *window, true
}

// Show makes a non-modal window visible.
func (s *Set) Show(id ID) error {
	window, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	window.Visible = true
	return nil
}

// Hide removes a window from the composition.
func (s *Set) Hide(id ID) error {
	window, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	window.Visible = false
	if s.activeModal == id {
		s.activeModal = ""
	}
	return nil
}

// ShowModal makes a modal window visible and gives it exclusive input
// focus. Showing a second modal while one is active fails with
// ErrModalAlreadyActive and leaves the active modal untouched.
func (s *Set) ShowModal(id ID) error {
	window, ok := s.windows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWindow, id)
	}
	if !window.Modal {
		return fmt.Errorf("window %s is not modal", id)
	}
	if s.activeModal != "" && s.activeModal != id {
		return fmt.Errorf("%w: %s", ErrModalAlreadyActive, s.activeModal)
	}
	window.Visible = true
	s.activeModal = id
	return nil
}

// CloseModal hides the active modal and returns focus to the non-modal
// windows.
func (s *Set) CloseModal() error {
	if s.activeModal == "" {
		return ErrNoActiveModal
	}
	s.windows[s.activeModal].Visible = false
	s.activeModal = ""
	return nil
}

// ActiveModal returns the id of the visible modal, or "" when there is
// none.
func (s *Set) ActiveModal() ID {
	return s.activeModal
}

// ResizeAll recomputes every window's rectangle against the new terminal
// size. Below the minimum usable geometry it records the size and reports
// ErrTooSmallTerminal without touching any rectangle, so nothing draws into
// an invalid region.
func (s *Set) ResizeAll(rows, cols int) error {
	s.rows = rows
	s.cols = cols

	if rows < s.minRows || cols < s.minCols {
		return fmt.Errorf("%w: %dx%d (minimum %dx%d)",
			ErrTooSmallTerminal, cols, rows, s.minCols, s.minRows)
	}

	for _, window := range s.windows {
		rect := window.layout(rows, cols)
		if !rect.valid() {
			return fmt.Errorf("%w: window %s at %dx%d", ErrInvalidRect, window.ID, cols, rows)
		}
		window.Rect = rect
	}
	return nil
}

// Size returns the last terminal size passed to ResizeAll.
func (s *Set) Size() (rows, cols int) {
	return s.rows, s.cols
}

// TooSmall reports whether the current terminal size is below the minimum
// usable geometry.
func (s *Set) TooSmall() bool {
	if s.rows == 0 && s.cols == 0 {
		return false
	}
	return s.rows < s.minRows || s.cols < s.minCols
}

// Visible returns the currently visible windows in ascending z-order.
func (s *Set) Visible() []Window {
	var visible []Window
	for _, window := range s.windows {
		if window.Visible {
			visible = append(visible, *window)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].Z != visible[j].Z {
			return visible[i].Z < visible[j].Z
		}
		return visible[i].ID < visible[j].ID
	})
	return visible
}
