package mail

import "errors"

// Sentinel kinds for mail errors.
var (
	ErrSend           = errors.New("mail send failed")
	ErrInvalidMessage = errors.New("invalid mail message")
)
