package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/soundbrowse/soundbrowse/internal/config"
	"github.com/soundbrowse/soundbrowse/internal/types"
)

func testSettings(baseURL string) config.Settings {
	settings := config.Defaults()
	settings.APIBaseURL = baseURL
	settings.BackoffBaseMs = 1
	settings.BackoffCapMs = 2
	settings.MaxRetries = 2
	return settings
}

func TestResolveUser_Success(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		if r.URL.Path != "/resolve" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "https://soundcloud.com/edamame" {
			t.Errorf("unexpected resolve url %q", got)
		}
		w.Write([]byte(`{"id": 42, "username": "edamame", "track_count": 7}`))
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	user, err := client.ResolveUser(context.Background(), "edamame")
	if err != nil {
		t.Fatalf("ResolveUser returned error: %v", err)
	}
	if user.ID != 42 || user.Username != "edamame" {
		t.Errorf("unexpected user %+v", user)
	}
	if calls != 1 {
		t.Errorf("expected 1 request, got %d", calls)
	}
}

func TestResolveUser_UnresolvedUsernameNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	_, err := client.ResolveUser(context.Background(), "doesnotexist123")
	if err == nil {
		t.Fatal("expected error for unknown username")
	}
	if !IsKind(err, KindUnresolvedUsername) {
		t.Errorf("expected KindUnresolvedUsername, got %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent errors must not be retried; got %d requests", calls)
	}
}

func TestResolveUser_EmptyUsernameRejectedLocally(t *testing.T) {
	client := NewClient(testSettings("http://127.0.0.1:0"))
	_, err := client.ResolveUser(context.Background(), "")
	if !IsKind(err, KindUnresolvedUsername) {
		t.Errorf("expected local rejection, got %v", err)
	}
}

func TestResolveUser_RateLimitedThenSuccess(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id": 1, "username": "edamame"}`))
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	user, err := client.ResolveUser(context.Background(), "edamame")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if user.ID != 1 {
		t.Errorf("unexpected user %+v", user)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
}

func TestResolveUser_TransportRetriesExhausted(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	settings := testSettings(server.URL)
	settings.MaxRetries = 2
	client := NewClient(settings)

	_, err := client.ResolveUser(context.Background(), "edamame")
	if !IsKind(err, KindTransport) {
		t.Fatalf("expected KindTransport, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected initial attempt plus 2 retries, got %d requests", calls)
	}
}

func TestFetchPage_LinkedPartitioning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/42/tracks" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("offset"); got != "50" {
			t.Errorf("unexpected offset %q", got)
		}
		w.Write([]byte(`{
			"collection": [
				{"id": 10, "kind": "track", "title": "First"},
				{"id": 11, "kind": "track", "title": "Second"}
			],
			"next_href": "https://api.example.com/users/42/tracks?offset=100&limit=50"
		}`))
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	page, err := client.FetchPage(context.Background(), 42, types.CategoryTracks, "50")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].Title != "First" {
		t.Errorf("unexpected first item %+v", page.Items[0])
	}
	if page.Items[0].Raw == nil {
		t.Error("item raw JSON should be preserved for the inspector")
	}
	if page.Cursor != "50" {
		t.Errorf("page cursor = %q, want %q", page.Cursor, "50")
	}
	if page.NextCursor != "100" {
		t.Errorf("next cursor = %q, want %q", page.NextCursor, "100")
	}
	if !page.HasMore() {
		t.Error("page with next_href should report more pages")
	}
}

func TestFetchPage_BareArrayIsFinalPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 5, "kind": "user", "username": "follower1"}]`))
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	page, err := client.FetchPage(context.Background(), 42, types.CategoryFollowers, "")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(page.Items))
	}
	if got := page.Items[0].DisplayTitle(); got != "follower1" {
		t.Errorf("display title = %q, want username", got)
	}
	if page.HasMore() {
		t.Error("bare array response has no further page")
	}
}

func TestFetchPage_InvalidCursorNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, "bad offset", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testSettings(server.URL))
	_, err := client.FetchPage(context.Background(), 42, types.CategoryTracks, "garbage")
	if !IsKind(err, KindInvalidCursor) {
		t.Fatalf("expected KindInvalidCursor, got %v", err)
	}
	if calls != 1 {
		t.Errorf("invalid cursor must not be retried; got %d requests", calls)
	}
}

func TestCursorFromHref(t *testing.T) {
	cases := []struct {
		name string
		href string
		want string
	}{
		{"offset param", "https://api.example.com/users/1/tracks?offset=150&limit=50", "150"},
		{"cursor param", "https://api.example.com/users/1/tracks?cursor=abc123", "abc123"},
		{"no token", "https://api.example.com/users/1/tracks", ""},
		{"unparsable", "://nope", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cursorFromHref(tc.href); got != tc.want {
				t.Errorf("cursorFromHref(%q) = %q, want %q", tc.href, got, tc.want)
			}
		})
	}
}
