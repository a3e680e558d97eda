package browser

import (
	"github.com/soundbrowse/soundbrowse/internal/types"
)

// Coord identifies one page of one subresource category.
type Coord struct {
	Category  types.Category
	PageIndex int
}

// FetchRequest describes a page fetch the caller should start. Generation
// tags the request so a completion arriving after a category or user switch
// can be recognized as stale and discarded.
type FetchRequest struct {
	Generation uint64
	UserID     int64
	Coord      Coord
	Cursor     string
}

// boundary move intents, applied when a page fetched from a selection
// boundary arrives
const (
	moveNone = iota
	moveFirst
	moveLast
)

// Browser owns the subresource cursor: current category, page index and
// selection, plus the loaded-page table and the pending-fetch registry.
// It never issues network calls itself; operations return a *FetchRequest
// when a page must be loaded, and the caller feeds completions back through
// Apply. All methods must be called from the event loop goroutine.
type Browser struct {
	user       *types.User
	category   types.Category
	pageIndex  int
	selection  int
	generation uint64

	pages   map[Coord]*types.Page
	pending map[Coord]bool

	// target coordinate and selection intent of an in-flight fetch that
	// should move the cursor when it completes
	awaiting     *Coord
	awaitingMove int
}

// New returns an empty browser positioned on the first category.
func New() *Browser {
	return &Browser{
		category: types.Categories[0],
		pages:    make(map[Coord]*types.Page),
		pending:  make(map[Coord]bool),
	}
}

// User returns the active user identity, or nil before the first lookup.
func (b *Browser) User() *types.User { return b.user }

// Category returns the current subresource category.
func (b *Browser) Category() types.Category { return b.category }

// PageIndex returns the current page index.
func (b *Browser) PageIndex() int { return b.pageIndex }

// Selection returns the selection index within the current page.
func (b *Browser) Selection() int { return b.selection }

// Generation returns the current fetch generation.
func (b *Browser) Generation() uint64 { return b.generation }

// CurrentPage returns the loaded page under the cursor, or nil while it is
// still being fetched.
func (b *Browser) CurrentPage() *types.Page {
	return b.pages[Coord{b.category, b.pageIndex}]
}

// SelectedItem returns the item under the selection cursor.
func (b *Browser) SelectedItem() (types.Item, bool) {
	page := b.CurrentPage()
	if page == nil || len(page.Items) == 0 {
		return types.Item{}, false
	}
	return page.Items[b.selection], true
}

// Loading reports whether a fetch for the current coordinate, or one the
// cursor is waiting to move to, is in flight.
func (b *Browser) Loading() bool {
	if b.pending[Coord{b.category, b.pageIndex}] {
		return true
	}
	return b.awaiting != nil && b.pending[*b.awaiting]
}

// SetUser installs a freshly resolved user identity and resets the cursor
// to the first category's first page. Every loaded page and in-flight fetch
// belongs to the previous identity and is dropped; the returned request
// loads the new first page.
func (b *Browser) SetUser(user *types.User) *FetchRequest {
	b.user = user
	b.category = types.Categories[0]
	b.pageIndex = 0
	b.selection = 0
	b.generation++
	b.pages = make(map[Coord]*types.Page)
	b.pending = make(map[Coord]bool)
	b.awaiting = nil
	b.awaitingMove = moveNone

	return b.request(Coord{b.category, 0}, "")
}

// SelectNext moves the selection down one item. At the bottom of the page it
// advances to the next page when one is known to exist, fetching it first if
// necessary; otherwise it is a no-op.
func (b *Browser) SelectNext() *FetchRequest {
	page := b.CurrentPage()
	if page == nil || len(page.Items) == 0 {
		return nil
	}
	if b.selection < len(page.Items)-1 {
		b.selection++
		return nil
	}
	return b.advance(moveFirst)
}

// SelectPrevious moves the selection up one item. At the top of the page it
// moves to the last item of the previous page when there is one; otherwise
// it is a no-op.
func (b *Browser) SelectPrevious() *FetchRequest {
	page := b.CurrentPage()
	if page == nil || len(page.Items) == 0 {
		return nil
	}
	if b.selection > 0 {
		b.selection--
		return nil
	}
	return b.retreat(moveLast)
}

// PageForward requests the next page. If it is already loaded the cursor
// switches immediately; otherwise a fetch is issued and the cursor stays on
// the current page until completion.
func (b *Browser) PageForward() *FetchRequest {
	return b.advance(moveNone)
}

// PageBackward moves to the previous page.
func (b *Browser) PageBackward() *FetchRequest {
	return b.retreat(moveNone)
}

// CycleCategory advances to the next category and resets the page index and
// selection to zero. The generation counter increments so completions for
// the previous category's coordinates are discarded on arrival. Previously
// loaded pages of the new category are reused; the returned request is nil
// when its first page is already loaded.
func (b *Browser) CycleCategory() *FetchRequest {
	b.category = b.category.Next()
	b.pageIndex = 0
	b.selection = 0
	b.generation++
	b.pending = make(map[Coord]bool)
	b.awaiting = nil
	b.awaitingMove = moveNone

	coord := Coord{b.category, 0}
	if b.pages[coord] != nil {
		return nil
	}
	return b.request(coord, "")
}

// Apply installs a fetch completion. Completions tagged with a stale
// generation are ignored entirely; the return value reports whether any
// state changed.
func (b *Browser) Apply(req FetchRequest, page *types.Page) bool {
	if req.Generation != b.generation {
		return false
	}

	delete(b.pending, req.Coord)
	b.pages[req.Coord] = page

	if b.awaiting != nil && *b.awaiting == req.Coord {
		move := b.awaitingMove
		b.awaiting = nil
		b.awaitingMove = moveNone

		b.pageIndex = req.Coord.PageIndex
		switch {
		case move == moveLast && len(page.Items) > 0:
			b.selection = len(page.Items) - 1
		default:
			b.selection = 0
		}
	}

	b.clampSelection()
	return true
}

// Fail records a fetch failure. Stale failures are ignored like stale
// completions; the cursor simply stops waiting for the coordinate.
func (b *Browser) Fail(req FetchRequest) bool {
	if req.Generation != b.generation {
		return false
	}
	delete(b.pending, req.Coord)
	if b.awaiting != nil && *b.awaiting == req.Coord {
		b.awaiting = nil
		b.awaitingMove = moveNone
	}
	return true
}

// advance moves or fetches toward the next page, recording the selection
// intent to apply when the page arrives.
func (b *Browser) advance(move int) *FetchRequest {
	page := b.CurrentPage()
	if page == nil {
		return nil
	}

	next := Coord{b.category, b.pageIndex + 1}
	if loaded := b.pages[next]; loaded != nil {
		b.pageIndex = next.PageIndex
		if move == moveLast && len(loaded.Items) > 0 {
			b.selection = len(loaded.Items) - 1
		} else {
			b.selection = 0
		}
		return nil
	}

	if !page.HasMore() {
		return nil
	}

	req := b.request(next, page.NextCursor)
	b.awaiting = &next
	if move == moveNone {
		b.awaitingMove = moveFirst
	} else {
		b.awaitingMove = move
	}
	return req
}

// retreat moves toward the previous page. Previous pages were necessarily
// loaded on the way forward, but a missing one is refetched rather than
// assumed.
func (b *Browser) retreat(move int) *FetchRequest {
	if b.pageIndex == 0 {
		return nil
	}

	prev := Coord{b.category, b.pageIndex - 1}
	if loaded := b.pages[prev]; loaded != nil {
		b.pageIndex = prev.PageIndex
		if move == moveLast && len(loaded.Items) > 0 {
			b.selection = len(loaded.Items) - 1
		} else {
			b.selection = 0
		}
		return nil
	}

	cursor := ""
	if prev.PageIndex > 0 {
		before := b.pages[Coord{b.category, prev.PageIndex - 1}]
		if before == nil {
			return nil
		}
		cursor = before.NextCursor
	}

	req := b.request(prev, cursor)
	b.awaiting = &prev
	if move == moveNone {
		b.awaitingMove = moveFirst
	} else {
		b.awaitingMove = move
	}
	return req
}

// request issues a fetch for the coordinate unless one is already in
// flight; duplicate requests coalesce onto the existing fetch.
func (b *Browser) request(coord Coord, cursor string) *FetchRequest {
	if b.user == nil {
		return nil
	}
	if b.pending[coord] {
		return nil
	}
	b.pending[coord] = true
	return &FetchRequest{
		Generation: b.generation,
		UserID:     b.user.ID,
		Coord:      coord,
		Cursor:     cursor,
	}
}

// clampSelection keeps the selection index inside the loaded page's bounds.
func (b *Browser) clampSelection() {
	page := b.CurrentPage()
	if page == nil || len(page.Items) == 0 {
		b.selection = 0
		return
	}
	if b.selection >= len(page.Items) {
		b.selection = len(page.Items) - 1
	}
	if b.selection < 0 {
		b.selection = 0
	}
}
