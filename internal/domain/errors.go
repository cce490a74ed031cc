package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNetwork indicates a transient transport or server failure.
	// Cached pages are never cleared because of it.
	ErrNetwork = errors.New("catalog service is unreachable")

	// ErrOutOfOrderPage indicates a page was appended out of sequence.
	// The current fetch sequence is aborted until an explicit reset.
	ErrOutOfOrderPage = errors.New("catalog page out of order")

	// ErrExhausted indicates pagination has no further pages
	ErrExhausted = errors.New("no more pages")

	// ErrStorageRead indicates persisted favourites could not be read
	ErrStorageRead = errors.New("failed to read favourites")

	// ErrOffline indicates a refresh was refused because there is no connectivity
	ErrOffline = errors.New("no network connection")

	// ErrNotFound indicates the requested episode does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrStale indicates a fetch result was superseded by a newer reset
	ErrStale = errors.New("result superseded by refresh")
)
