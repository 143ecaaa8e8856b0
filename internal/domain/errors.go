package domain

import "errors"

// Sentinel errors shared across adapters and services.
var (
	// ErrFeedUnavailable covers network failures and non-2xx feed responses.
	ErrFeedUnavailable = errors.New("session feed unavailable")
	// ErrMalformedFeed covers JSON decode failures and unexpected feed shapes.
	ErrMalformedFeed = errors.New("malformed session feed")
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
)
