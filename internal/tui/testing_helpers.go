package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/soundbrowse/soundbrowse/internal/api"
	"github.com/soundbrowse/soundbrowse/internal/cache"
	"github.com/soundbrowse/soundbrowse/internal/config"
	"github.com/soundbrowse/soundbrowse/internal/types"
)

// stubClient is an in-memory resourceClient for tests. Pages are keyed by
// userID/category/cursor.
type stubClient struct {
	users map[string]*types.User
	pages map[string]*types.Page

	resolveErr error
	fetchErr   error

	resolveCalls int
	fetchCalls   int
}

func newStubClient() *stubClient {
	return &stubClient{
		users: make(map[string]*types.User),
		pages: make(map[string]*types.Page),
	}
}

func pageKey(userID int64, category types.Category, cursor string) string {
	return fmt.Sprintf("%d/%s/%s", userID, category, cursor)
}

func (c *stubClient) addUser(user *types.User) {
	c.users[user.Username] = user
}

func (c *stubClient) addPage(userID int64, category types.Category, cursor string, page *types.Page) {
	page.Cursor = cursor
	c.pages[pageKey(userID, category, cursor)] = page
}

func (c *stubClient) ResolveUser(ctx context.Context, username string) (*types.User, error) {
	c.resolveCalls++
	if c.resolveErr != nil {
		return nil, c.resolveErr
	}
	if user, ok := c.users[username]; ok {
		return user, nil
	}
	return nil, &api.Error{Kind: api.KindUnresolvedUsername, Op: "resolve"}
}

func (c *stubClient) FetchPage(ctx context.Context, userID int64, category types.Category, cursor string) (*types.Page, error) {
	c.fetchCalls++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	if page, ok := c.pages[pageKey(userID, category, cursor)]; ok {
		return page, nil
	}
	return &types.Page{Cursor: cursor}, nil
}

// CreateTestModel creates a Model wired to a stub client and a temporary
// cache database, sized to a healthy terminal.
func CreateTestModel(t *testing.T) (*Model, *stubClient) {
	t.Helper()

	tempDir := t.TempDir()

	originalSession := config.SessionFile
	config.SessionFile = filepath.Join(tempDir, "session.yaml")
	t.Cleanup(func() { config.SessionFile = originalSession })

	store, err := cache.NewStore(filepath.Join(tempDir, "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	client := newStubClient()

	m, err := New(config.Defaults(), client, store)
	if err != nil {
		t.Fatalf("failed to create test model: %v", err)
	}

	deliver(t, m, m.Init())
	deliver(t, m, func() tea.Msg { return tea.WindowSizeMsg{Width: 120, Height: 40} })

	return m, client
}

// deliver runs a command tree to completion, feeding every produced message
// back through Update. Commands run synchronously against the stub client,
// so completions arrive in a deterministic order.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}

	msg := cmd()
	if msg == nil {
		return
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			deliver(t, m, sub)
		}
		return
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}

	_, next := m.Update(msg)
	deliver(t, m, next)
}

// press feeds one named key through the update loop, running any resulting
// commands to completion.
func press(t *testing.T, m *Model, key string) {
	t.Helper()
	_, cmd := m.Update(keyMsg(key))
	deliver(t, m, cmd)
}

// typeText feeds printable characters through the update loop one at a time.
func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		press(t, m, string(r))
	}
}

func keyMsg(key string) tea.KeyMsg {
	named := map[string]tea.KeyType{
		"enter":  tea.KeyEnter,
		"esc":    tea.KeyEsc,
		"tab":    tea.KeyTab,
		"up":     tea.KeyUp,
		"down":   tea.KeyDown,
		"pgup":   tea.KeyPgUp,
		"pgdown": tea.KeyPgDown,
		"f1":     tea.KeyF1,
		"ctrl+c": tea.KeyCtrlC,
	}
	if keyType, ok := named[key]; ok {
		return tea.KeyMsg{Type: keyType}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// resolvedUser installs a canned user with one page per category and drives
// the prompt through a successful lookup.
func resolvedUser(t *testing.T, m *Model, client *stubClient) *types.User {
	t.Helper()

	user := &types.User{ID: 42, Username: "edamame", FullName: "Edamame Beans"}
	client.addUser(user)
	for _, category := range types.Categories {
		client.addPage(user.ID, category, "", &types.Page{
			Items: []types.Item{
				{ID: 1, Title: string(category) + " one", PermalinkURL: "https://example.com/1"},
				{ID: 2, Title: string(category) + " two", PermalinkURL: "https://example.com/2"},
			},
		})
	}

	typeText(t, m, user.Username)
	press(t, m, "enter")
	return user
}
