package repository

import "errors"

// Sentinel kinds for sheet store errors.
var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrStore         = errors.New("sheet store failure")
)
