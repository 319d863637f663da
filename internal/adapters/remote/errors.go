package remote

import "errors"

// Sentinel kinds for sync errors. Only ErrCreate and ErrSessionNotFound
// are session-fatal; everything else is transient and retried implicitly
// by the next scheduled attempt.
var (
	ErrCreate          = errors.New("session create failed")
	ErrSessionNotFound = errors.New("session not found")
	ErrTransient       = errors.New("transient sync failure")
)
