package docstore

import "errors"

var (
	// ErrUninitialized is returned by every operation attempted before
	// Initialize or after Close. The caller must (re-)initialize a store
	// before using it; a closed store stays closed.
	ErrUninitialized = errors.New("docstore: not initialized")

	// ErrClosed is returned by Initialize on a closed store. Closing is
	// terminal; there is no re-open.
	ErrClosed = errors.New("docstore: store is closed")
)
