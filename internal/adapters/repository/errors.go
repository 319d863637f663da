package repository

import "errors"

// Sentinel kinds for entity store errors.
var (
	ErrNotFound     = errors.New("entry not found")
	ErrUnknownEntry = errors.New("feedback references unknown entry")
)
