package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundbrowse/soundbrowse/internal/browser"
)

// requestTimeout bounds one remote call including its internal retries.
func (m *Model) requestTimeout() time.Duration {
	// Worst case: every attempt times out and backs off to the cap.
	perAttempt := time.Duration(m.settings.RequestTimeout) * time.Second
	attempts := time.Duration(m.settings.MaxRetries + 1)
	backoff := time.Duration(m.settings.BackoffCapMs*m.settings.MaxRetries) * time.Millisecond
	return perAttempt*attempts + backoff
}

// lookupUser resolves a username off the event loop goroutine. The
// completion (success or failure) is delivered back as a message, keeping a
// total order between user input and lookup results.
func (m *Model) lookupUser(username string) tea.Cmd {
	client := m.client
	store := m.store
	timeout := m.requestTimeout()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		user, err := client.ResolveUser(ctx, username)
		if err != nil {
			return lookupFailedMsg{username: username, message: formatRemoteError(username, err)}
		}

		if store != nil {
			// A different identity invalidates every cached page.
			store.InvalidateOtherUsers(user.ID)
			store.RecordLookup(user.Username, user.ID)
		}
		return userResolvedMsg{username: username, user: user}
	}
}

// fetchPage loads one page coordinate: cache first, then the network. The
// request keeps its generation tag so the completion can be recognized as
// stale after a category or user switch.
func (m *Model) fetchPage(req *browser.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	client := m.client
	store := m.store
	timeout := m.requestTimeout()
	r := *req

	return func() tea.Msg {
		if store != nil {
			if page, ok, err := store.GetPage(r.UserID, r.Coord.Category, r.Cursor); err == nil && ok {
				return pageFetchedMsg{req: r, page: page, fromCache: true}
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		page, err := client.FetchPage(ctx, r.UserID, r.Coord.Category, r.Cursor)
		if err != nil {
			return pageFailedMsg{req: r, message: formatRemoteError("", err)}
		}

		if store != nil {
			store.PutPage(r.UserID, r.Coord.Category, page)
		}
		return pageFetchedMsg{req: r, page: page}
	}
}

// loadRecentUsernames pulls the lookup history for the prompt modal's
// suggestion list.
func (m *Model) loadRecentUsernames() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		usernames, err := store.RecentLookups(20)
		if err != nil {
			return recentUsernamesMsg{}
		}
		return recentUsernamesMsg{usernames: usernames}
	}
}

// yankSelection copies the selected item's permalink to the clipboard.
func (m *Model) yankSelection() tea.Cmd {
	item, ok := m.browser.SelectedItem()
	if !ok {
		m.statusMsg = "Nothing selected"
		return nil
	}
	if item.PermalinkURL == "" {
		m.statusMsg = "Selected item has no permalink"
		return nil
	}

	url := item.PermalinkURL
	return func() tea.Msg {
		if err := clipboard.WriteAll(url); err != nil {
			return statusMsg("clipboard unavailable: " + err.Error())
		}
		return statusMsg("Copied " + url)
	}
}
