package trajectory

import "errors"

// Common sentinel errors
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoForkPoint   = errors.New("fork point out of range")
)
