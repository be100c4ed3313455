package model

import "errors"

// Sentinel kinds for parsing domain values.
var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrUnknownMode   = errors.New("unknown ranking mode")
)
