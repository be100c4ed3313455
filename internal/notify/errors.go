package notify

import "errors"

// Sentinel kinds for notification failures. None of them ever reaches the
// submitter; they are collected in Report.Errors.
var (
	ErrRegistry  = errors.New("subscriber registry unavailable")
	ErrTemplate  = errors.New("render notification")
	ErrQueueFull = errors.New("mail queue rejected message")
	ErrLog       = errors.New("edition log unavailable")
)
