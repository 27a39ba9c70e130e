package service

import "errors"

// Sentinel errors the boundary maps to HTTP responses. Services never
// translate them; handlers decide presentation.
var (
	// ErrNotFound covers a missing group slug, username, or post id.
	ErrNotFound = errors.New("not found")

	// ErrEmptyText rejects a post or comment with no text. The handler
	// re-renders the form instead of persisting anything.
	ErrEmptyText = errors.New("text must not be empty")
)
