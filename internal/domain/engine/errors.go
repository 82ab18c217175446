package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrInvalidWindow = errors.New("invalid window days")
	ErrMissingAsOf   = errors.New("missing as-of date")
)
