package persistence

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrOpen = errors.New("open local database")
)
