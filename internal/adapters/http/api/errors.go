package api

import "errors"

// Sentinel kinds for HTTP handler errors.
var (
	ErrBadRequest = errors.New("bad request")
)
