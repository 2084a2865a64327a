package chunk

import "errors"

var (
	// ErrInvalidMaxTokens is returned when the window size is not positive.
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")

	// ErrInvalidOverlap is returned when the overlap is negative or at
	// least as large as the window size, which would never terminate.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than max tokens")
)
