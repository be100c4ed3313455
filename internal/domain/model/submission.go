// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// Submission is one raw, append-only row of an edition's backing log.
type Submission struct {
	ID          string    // row id, optional in legacy sheets
	Participant string    // roster name
	Day         int       // 1-based competition day
	Status      Status    // reported outcome
	Notes       string    // free text
	Timestamp   time.Time // write time; the latest one wins per (participant, day)
}

// DayEntry is what survives the fold for one (participant, day).
type DayEntry struct {
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// DayStatusMap maps participant -> day -> latest entry.
type DayStatusMap map[string]map[int]DayEntry

// Entry returns the entry for (participant, day) if one was recorded.
func (m DayStatusMap) Entry(participant string, day int) (DayEntry, bool) {
	days, ok := m[participant]
	if !ok {
		return DayEntry{}, false
	}
	e, ok := days[day]
	return e, ok
}

// Failing reports whether the day counts as failing for elimination.
// A missing entry is failing.
func (m DayStatusMap) Failing(participant string, day int) bool {
	e, ok := m.Entry(participant, day)
	return !ok || e.Status.Failing()
}

// Set overwrites the entry for (participant, day).
func (m DayStatusMap) Set(participant string, day int, e DayEntry) {
	days, ok := m[participant]
	if !ok {
		days = make(map[int]DayEntry)
		m[participant] = days
	}
	days[day] = e
}

// MaxDay returns the highest day with any entry, or 0.
func (m DayStatusMap) MaxDay() int {
	maxDay := 0
	for _, days := range m {
		for d := range days {
			if d > maxDay {
				maxDay = d
			}
		}
	}
	return maxDay
}

// Participants returns the participants present in the map, sorted.
func (m DayStatusMap) Participants() []string {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Table is a full sheet read: a header row and the data rows after it.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Index returns the position of each header name.
func (t Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		idx[h] = i
	}
	return idx
}
