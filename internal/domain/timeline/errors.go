package timeline

import "errors"

// Sentinel kinds for timeline errors. These allow errors.Is/As from callers.
var (
	ErrInvalidDate = errors.New("invalid date")
)
