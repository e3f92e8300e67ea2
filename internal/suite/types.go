package suite

import "errors"

// Errors
var (
	ErrUnknownSuite = errors.New("unknown suite")
)
