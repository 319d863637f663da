package scoring

import "errors"

// Sentinel kinds for rubric validation errors. Callers use errors.Is to
// reject input at the boundary without mutating state.
var (
	ErrInvalidEntry    = errors.New("invalid entry")
	ErrInvalidFeedback = errors.New("invalid feedback")
)
