package host

import "errors"

// Sentinel kinds for session host errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)
