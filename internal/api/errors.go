package api

import (
	"errors"
	"fmt"
)

// Kind classifies a remote call failure. The TUI reacts to the kind, never
// to the underlying transport detail.
type Kind int

const (
	// KindTransport covers network failures and 5xx responses. Retryable.
	KindTransport Kind = iota
	// KindRateLimited is a 429 response. Retryable after backoff.
	KindRateLimited
	// KindUnresolvedUsername means the username does not exist. Permanent.
	KindUnresolvedUsername
	// KindInvalidCursor means the pagination token was rejected. Permanent.
	KindInvalidCursor
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindRateLimited:
		return "rate limited"
	case KindUnresolvedUsername:
		return "unresolved username"
	case KindInvalidCursor:
		return "invalid cursor"
	}
	return "unknown error"
}

// Error is a classified remote call failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error kind is transient.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransport || e.Kind == KindRateLimited
}

// KindOf extracts the classification from an error chain. The second return
// is false when the error did not come from this package.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
