package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/semaphore"

	"github.com/soundbrowse/soundbrowse/internal/config"
	"github.com/soundbrowse/soundbrowse/internal/types"
)

const permalinkDomain = "https://soundcloud.com"

// Client issues user-lookup and paginated subresource requests against the
// remote service. Transient failures are retried internally with exponential
// backoff; permanent failures propagate immediately. Concurrent requests are
// bounded by a semaphore so a burst of page fetches cannot exhaust sockets.
type Client struct {
	baseURL     string
	clientID    string
	http        *http.Client
	sem         *semaphore.Weighted
	pageSize    int
	maxRetries  int
	backoffBase time.Duration
	backoffCap  time.Duration
}

// NewClient builds a client from settings. When OAuth client credentials are
// configured, the underlying transport fetches and refreshes tokens through
// the client-credentials flow; otherwise requests carry the public client_id
// query parameter.
func NewClient(settings config.Settings) *Client {
	httpClient := &http.Client{
		Timeout: time.Duration(settings.RequestTimeout) * time.Second,
	}

	if settings.ClientID != "" && settings.ClientSecret != "" {
		creds := clientcredentials.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			TokenURL:     settings.TokenURL,
		}
		httpClient = creds.Client(context.Background())
		httpClient.Timeout = time.Duration(settings.RequestTimeout) * time.Second
	}

	return &Client{
		baseURL:     settings.APIBaseURL,
		clientID:    settings.ClientID,
		http:        httpClient,
		sem:         semaphore.NewWeighted(int64(settings.MaxConcurrent)),
		pageSize:    settings.PageSize,
		maxRetries:  settings.MaxRetries,
		backoffBase: time.Duration(settings.BackoffBaseMs) * time.Millisecond,
		backoffCap:  time.Duration(settings.BackoffCapMs) * time.Millisecond,
	}
}

// PermalinkURL returns the public profile URL for a username path.
func PermalinkURL(path string) string {
	return permalinkDomain + "/" + path
}

// ResolveUser resolves a username to its user identity via the service's
// resolve endpoint. A nonexistent username fails with KindUnresolvedUsername
// and is never retried.
func (c *Client) ResolveUser(ctx context.Context, username string) (*types.User, error) {
	if username == "" {
		return nil, &Error{Kind: KindUnresolvedUsername, Op: "resolve"}
	}

	query := url.Values{}
	query.Set("url", PermalinkURL(username))

	body, err := c.get(ctx, "resolve", "/resolve", query, KindUnresolvedUsername)
	if err != nil {
		return nil, err
	}

	var user types.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &Error{Kind: KindTransport, Op: "resolve", Err: err}
	}
	return &user, nil
}

// FetchPage retrieves one page of a user subresource. The cursor is the
// opaque token from a previous page's NextCursor, or empty for the first
// page. A rejected cursor fails with KindInvalidCursor and is never retried.
func (c *Client) FetchPage(ctx context.Context, userID int64, category types.Category, cursor string) (*types.Page, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.pageSize))
	query.Set("linked_partitioning", "1")
	if cursor != "" {
		query.Set("offset", cursor)
	}

	path := fmt.Sprintf("/users/%d/%s", userID, category)
	body, err := c.get(ctx, "fetch "+string(category), path, query, KindInvalidCursor)
	if err != nil {
		return nil, err
	}

	page, err := decodePage(body, cursor)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "fetch " + string(category), Err: err}
	}
	return page, nil
}

// get performs a GET with bounded retries. notFoundKind is the classification
// for a 4xx response, which differs between the resolve and page endpoints.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, notFoundKind Kind) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return nil, &Error{Kind: KindTransport, Op: op, Err: err}
			}
		}

		body, err := c.getOnce(ctx, op, path, query, notFoundKind)
		if err == nil {
			return body, nil
		}

		var apiErr *Error
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, op, path string, query url.Values, notFoundKind Kind) ([]byte, error) {
	endpoint := c.baseURL + path
	if c.clientID != "" {
		query.Set("client_id", c.clientID)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindRateLimited, Op: op}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("status %s", resp.Status)}
	case resp.StatusCode >= 400:
		return nil, &Error{Kind: notFoundKind, Op: op, Err: fmt.Errorf("status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	return body, nil
}

// sleepBackoff waits before retry attempt n using capped exponential backoff.
func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	delay := c.backoffBase << (attempt - 1)
	if delay > c.backoffCap {
		delay = c.backoffCap
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pageEnvelope is the linked-partitioning response shape: a collection plus
// an optional href for the following page.
type pageEnvelope struct {
	Collection []json.RawMessage `json:"collection"`
	NextHref   string            `json:"next_href"`
}

// decodePage parses either the linked-partitioning envelope or a bare JSON
// array into a Page, preserving each item's raw JSON for the inspector.
func decodePage(body []byte, cursor string) (*types.Page, error) {
	var envelope pageEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Older endpoints return a bare array.
		var collection []json.RawMessage
		if arrErr := json.Unmarshal(body, &collection); arrErr != nil {
			return nil, err
		}
		envelope.Collection = collection
	}

	page := &types.Page{Cursor: cursor}
	for _, raw := range envelope.Collection {
		var item types.Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		item.Raw = raw
		page.Items = append(page.Items, item)
	}

	if envelope.NextHref != "" {
		page.NextCursor = cursorFromHref(envelope.NextHref)
	}
	return page, nil
}

// cursorFromHref extracts the pagination token from a next_href URL.
func cursorFromHref(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	query := parsed.Query()
	if offset := query.Get("offset"); offset != "" {
		return offset
	}
	return query.Get("cursor")
}
