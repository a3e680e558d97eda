package types

import "encoding/json"

// Category identifies one of the per-user subresource collections exposed by
// the remote service. The set is fixed and ordered; Tab cycles through it.
type Category string

const (
	CategoryTracks     Category = "tracks"
	CategoryPlaylists  Category = "playlists"
	CategoryFavorites  Category = "favorites"
	CategoryFollowings Category = "followings"
	CategoryFollowers  Category = "followers"
)

// Categories lists every category in display and cycle order.
var Categories = []Category{
	CategoryTracks,
	CategoryPlaylists,
	CategoryFavorites,
	CategoryFollowings,
	CategoryFollowers,
}

// Next returns the category that follows c in cycle order, wrapping around
// after the last one. Unknown categories restart at the first.
func (c Category) Next() Category {
	for i, cat := range Categories {
		if cat == c {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return Categories[0]
}

// Title returns a human-readable label for the category header.
func (c Category) Title() string {
	switch c {
	case CategoryTracks:
		return "Tracks"
	case CategoryPlaylists:
		return "Playlists"
	case CategoryFavorites:
		return "Favorites"
	case CategoryFollowings:
		return "Followings"
	case CategoryFollowers:
		return "Followers"
	}
	return string(c)
}

// User is a resolved user identity. Replaced wholesale on every successful
// lookup, never partially mutated.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name,omitempty"`
	City           string `json:"city,omitempty"`
	PermalinkURL   string `json:"permalink_url,omitempty"`
	TrackCount     int    `json:"track_count"`
	FollowerCount  int    `json:"followers_count"`
	FollowingCount int    `json:"followings_count"`
}

// Item is a single entry within a subresource page. Raw keeps the original
// JSON object for the inspect modal.
type Item struct {
	ID           int64           `json:"id"`
	Kind         string          `json:"kind,omitempty"`
	Title        string          `json:"title,omitempty"`
	Username     string          `json:"username,omitempty"`
	PermalinkURL string          `json:"permalink_url,omitempty"`
	Duration     int64           `json:"duration,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// DisplayTitle returns the text shown in the browser list. Follower and
// following entries are users and carry a username instead of a title.
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	if i.Username != "" {
		return i.Username
	}
	return "(untitled)"
}

// Page is one fetched slice of a subresource collection. Cursor is the opaque
// pagination token this page was fetched with; NextCursor is empty when no
// further page exists.
type Page struct {
	Items      []Item `json:"items"`
	Cursor     string `json:"cursor,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// HasMore reports whether a further page can be requested after this one.
func (p Page) HasMore() bool {
	return p.NextCursor != ""
}
