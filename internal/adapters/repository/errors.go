package repository

import "errors"

// Sentinel errors for the history store.
var (
	ErrNotFound = errors.New("athlete not found")
)
