package browser

import (
	"fmt"
	"testing"

	"github.com/soundbrowse/soundbrowse/internal/types"
)

func testUser() *types.User {
	return &types.User{ID: 42, Username: "edamame"}
}

func testPage(cursor, next string, count int) *types.Page {
	page := &types.Page{Cursor: cursor, NextCursor: next}
	for i := 0; i < count; i++ {
		page.Items = append(page.Items, types.Item{
			ID:    int64(i),
			Title: fmt.Sprintf("item-%s-%d", cursor, i),
		})
	}
	return page
}

// newLoadedBrowser returns a browser with a user set and the first tracks
// page applied.
func newLoadedBrowser(t *testing.T, firstPage *types.Page) *Browser {
	t.Helper()
	b := New()
	req := b.SetUser(testUser())
	if req == nil {
		t.Fatal("SetUser should request the first page")
	}
	if !b.Apply(*req, firstPage) {
		t.Fatal("first page completion should apply")
	}
	return b
}

func TestSelection_StaysWithinPageBounds(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "", 3))

	// Walk down past the end and up past the start; the selection must
	// never leave [0, 2].
	moves := []func() *FetchRequest{
		b.SelectNext, b.SelectNext, b.SelectNext, b.SelectNext, b.SelectNext,
		b.SelectPrevious, b.SelectPrevious, b.SelectPrevious, b.SelectPrevious,
	}
	for i, move := range moves {
		move()
		if b.Selection() < 0 || b.Selection() > 2 {
			t.Fatalf("move %d: selection %d out of bounds", i, b.Selection())
		}
	}
	if b.Selection() != 0 {
		t.Errorf("selection = %d, want 0 after walking back up", b.Selection())
	}
}

func TestSelection_EmptyPageStaysZero(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "", 0))

	b.SelectNext()
	b.SelectPrevious()
	if b.Selection() != 0 {
		t.Errorf("selection on empty page = %d, want 0", b.Selection())
	}
	if _, ok := b.SelectedItem(); ok {
		t.Error("empty page should have no selected item")
	}
}

func TestSelectNext_AtBoundaryFetchesNextPage(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))

	b.SelectNext() // to last item
	req := b.SelectNext()
	if req == nil {
		t.Fatal("boundary SelectNext with a further page should fetch")
	}
	if req.Coord.PageIndex != 1 || req.Cursor != "50" {
		t.Errorf("unexpected request %+v", req)
	}

	// Cursor stays put until the page arrives.
	if b.PageIndex() != 0 || b.Selection() != 1 {
		t.Errorf("cursor moved before completion: page %d selection %d", b.PageIndex(), b.Selection())
	}
	if !b.Loading() {
		t.Error("browser should report loading while the fetch is in flight")
	}

	b.Apply(*req, testPage("50", "", 3))
	if b.PageIndex() != 1 || b.Selection() != 0 {
		t.Errorf("after completion: page %d selection %d, want page 1 selection 0", b.PageIndex(), b.Selection())
	}
}

func TestSelectPrevious_AtTopMovesToLastItemOfPreviousPage(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))

	req := b.PageForward()
	b.Apply(*req, testPage("50", "", 4))
	if b.PageIndex() != 1 {
		t.Fatalf("page index = %d, want 1", b.PageIndex())
	}

	b.SelectPrevious()
	if b.PageIndex() != 0 {
		t.Fatalf("page index = %d, want 0 after boundary SelectPrevious", b.PageIndex())
	}
	if b.Selection() != 1 {
		t.Errorf("selection = %d, want last item of previous page", b.Selection())
	}
}

func TestPageForward_AlreadyLoadedIssuesNoFetch(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))

	req := b.PageForward()
	if req == nil {
		t.Fatal("first PageForward should fetch")
	}
	b.Apply(*req, testPage("50", "", 2))

	b.PageBackward()
	if b.PageIndex() != 0 {
		t.Fatalf("page index = %d, want 0", b.PageIndex())
	}

	// Next page is now loaded; moving forward again must not fetch.
	if req := b.PageForward(); req != nil {
		t.Errorf("PageForward with loaded page issued fetch %+v", req)
	}
	if b.PageIndex() != 1 {
		t.Errorf("page index = %d, want 1", b.PageIndex())
	}
}

func TestPageForward_PendingFetchCoalesces(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))

	first := b.PageForward()
	if first == nil {
		t.Fatal("first PageForward should fetch")
	}
	if second := b.PageForward(); second != nil {
		t.Errorf("second PageForward before completion issued fetch %+v", second)
	}
}

func TestPageForward_NoFurtherPageIsNoOp(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "", 2))

	if req := b.PageForward(); req != nil {
		t.Errorf("PageForward on final page issued fetch %+v", req)
	}
	if b.PageIndex() != 0 {
		t.Errorf("page index = %d, want 0", b.PageIndex())
	}
}

func TestCycleCategory_ResetsCursorAndWrapsAround(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "", 3))
	b.SelectNext()

	start := b.Category()
	for i := 0; i < len(types.Categories); i++ {
		b.CycleCategory()
		if b.PageIndex() != 0 || b.Selection() != 0 {
			t.Fatalf("cycle %d: cursor not reset (page %d selection %d)", i, b.PageIndex(), b.Selection())
		}
	}
	if b.Category() != start {
		t.Errorf("category = %q after full cycle, want %q", b.Category(), start)
	}
}

func TestCycleCategory_StaleCompletionIgnored(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))

	stale := b.PageForward()
	if stale == nil {
		t.Fatal("PageForward should fetch")
	}

	// Two category switches invalidate the in-flight fetch twice over.
	b.CycleCategory()
	b.CycleCategory()

	category := b.Category()
	pageIndex := b.PageIndex()
	selection := b.Selection()

	if b.Apply(*stale, testPage("50", "", 5)) {
		t.Error("stale completion must not be applied")
	}
	if b.Category() != category || b.PageIndex() != pageIndex || b.Selection() != selection {
		t.Error("stale completion mutated browser state")
	}
}

func TestCycleCategory_ReusesLoadedPages(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "", 2))

	for i := 0; i < len(types.Categories)-1; i++ {
		req := b.CycleCategory()
		if req == nil {
			t.Fatalf("cycle %d: expected fetch for unloaded category", i)
		}
		b.Apply(*req, testPage("", "", 1))
	}

	// Completing the cycle returns to tracks, whose page is still loaded.
	if req := b.CycleCategory(); req != nil {
		t.Errorf("returning to a loaded category issued fetch %+v", req)
	}
	if b.CurrentPage() == nil {
		t.Error("previously loaded page should be reused")
	}
}

func TestSetUser_DropsOldPagesAndInvalidatesFetches(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))
	inflight := b.PageForward()

	req := b.SetUser(&types.User{ID: 99, Username: "other"})
	if req == nil {
		t.Fatal("SetUser should request the new user's first page")
	}
	if req.UserID != 99 {
		t.Errorf("request user id = %d, want 99", req.UserID)
	}
	if b.CurrentPage() != nil {
		t.Error("old user's pages should be dropped")
	}
	if b.Apply(*inflight, testPage("50", "", 2)) {
		t.Error("completion for the previous user must be discarded")
	}
}

func TestFail_ClearsPendingAndAllowsRetry(t *testing.T) {
	b := newLoadedBrowser(t, testPage("", "50", 2))

	req := b.PageForward()
	if !b.Fail(*req) {
		t.Fatal("current-generation failure should be acknowledged")
	}
	if b.Loading() {
		t.Error("failed fetch should clear the loading flag")
	}

	// The coordinate is free again; a new fetch may be issued.
	retry := b.PageForward()
	if retry == nil {
		t.Error("PageForward after failure should fetch again")
	}
}
