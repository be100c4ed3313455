package model

import (
	"slices"
	"time"
)

// Edition is one monthly instance of the competition.
type Edition struct {
	ID        string    // canonical identifier used in routes
	Label     string    // display label, e.g. "Październik 2026"
	Sheet     string    // backing log name in the sheet store
	StartDate time.Time // day 1 of the edition
	Roster    []string  // participants allowed to report
}

// HasParticipant reports whether name is on the roster.
func (e Edition) HasParticipant(name string) bool {
	return slices.Contains(e.Roster, name)
}
