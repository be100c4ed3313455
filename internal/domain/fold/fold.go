// Package fold turns the raw rows of a backing log into the per-participant,
// per-day latest-status map.
package fold

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/poprzeczka/internal/domain/model"
)

// Column names of an edition backing log.
const (
	ColumnID          = "id"
	ColumnTimestamp   = "timestamp"
	ColumnParticipant = "participant"
	ColumnDay         = "day"
	ColumnStatus      = "status"
	ColumnNotes       = "notes"
)

// Drop reasons reported in Result.Dropped.
const (
	DropRoster    = "roster"
	DropDay       = "day"
	DropStatus    = "status"
	DropTimestamp = "timestamp"
)

// Headers is the full column layout written by the service.
var Headers = []string{ColumnID, ColumnTimestamp, ColumnParticipant, ColumnDay, ColumnStatus, ColumnNotes}

// Required lists the columns a log must have to be folded.
var Required = []string{ColumnTimestamp, ColumnParticipant, ColumnDay, ColumnStatus, ColumnNotes}

// Result is the outcome of folding one backing log.
type Result struct {
	Days    model.DayStatusMap
	MaxDay  int
	Dropped map[string]int
}

// Process folds table into the latest status per (participant, day).
// Rows for participants outside roster and rows with unparseable fields are
// dropped. Missing columns yield an empty result and a *SchemaMismatchError.
func Process(table model.Table, roster []string) (Result, error) {
	res := Result{Days: model.DayStatusMap{}, Dropped: map[string]int{}}

	idx := table.Index()
	var missing bool
	for _, col := range Required {
		if _, ok := idx[col]; !ok {
			missing = true
			break
		}
	}
	if missing {
		return res, &SchemaMismatchError{
			Expected: slices.Clone(Required),
			Found:    slices.Clone(table.Headers),
		}
	}

	subs := Parse(table, idx, roster, res.Dropped)
	Apply(res.Days, subs)
	res.MaxDay = res.Days.MaxDay()
	return res, nil
}

// Parse converts rows into submissions, counting drops by reason in dropped.
// The returned slice keeps source order.
func Parse(table model.Table, idx map[string]int, roster []string, dropped map[string]int) []model.Submission {
	allowed := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		allowed[p] = struct{}{}
	}

	out := make([]model.Submission, 0, len(table.Rows))
	for _, row := range table.Rows {
		participant := strings.TrimSpace(cell(row, idx, ColumnParticipant))
		if _, ok := allowed[participant]; !ok {
			dropped[DropRoster]++
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(cell(row, idx, ColumnDay)))
		if err != nil || day < 1 {
			dropped[DropDay]++
			continue
		}
		status, err := model.ParseStatus(cell(row, idx, ColumnStatus))
		if err != nil {
			dropped[DropStatus]++
			continue
		}
		ts, err := ParseTimestamp(cell(row, idx, ColumnTimestamp))
		if err != nil {
			dropped[DropTimestamp]++
			continue
		}
		out = append(out, model.Submission{
			ID:          cell(row, idx, ColumnID),
			Participant: participant,
			Day:         day,
			Status:      status,
			Notes:       cell(row, idx, ColumnNotes),
			Timestamp:   ts,
		})
	}
	return out
}

// Apply overwrites days with subs in ascending timestamp order, so the latest
// write per (participant, day) wins. Equal timestamps keep source order.
func Apply(days model.DayStatusMap, subs []model.Submission) {
	ordered := slices.Clone(subs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	for _, s := range ordered {
		days.Set(s.Participant, s.Day, model.DayEntry{Status: s.Status, Notes: s.Notes})
	}
}

// Row renders a submission in the Headers layout.
func Row(s model.Submission) []string {
	return []string{
		s.ID,
		FormatTimestamp(s.Timestamp),
		s.Participant,
		strconv.Itoa(s.Day),
		s.Status.String(),
		s.Notes,
	}
}

// FormatTimestamp is the on-sheet timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp accepts RFC 3339 and the spreadsheet "2006-01-02 15:04:05" layout.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.DateTime, raw)
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
