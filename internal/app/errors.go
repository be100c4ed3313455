package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownEdition    = errors.New("unknown edition")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrNotStarted        = errors.New("service not started")
	ErrStore             = errors.New("store unavailable")
)
