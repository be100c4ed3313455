package simulate

import "errors"

// Sentinel errors.
var (
	ErrInvalidConfig  = errors.New("invalid simulation config")
	ErrUnhealthy      = errors.New("service unhealthy")
	ErrUnknownEdition = errors.New("edition not served")
	ErrMismatch       = errors.New("ranking mismatch")
)
