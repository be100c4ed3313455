package model

import (
	"fmt"
	"strings"
)

// Status is the daily outcome a participant reports.
type Status int

// Status values. The zero value is not a valid status.
const (
	StatusUnknown Status = iota
	StatusPass
	StatusFail
	StatusNoReport
)

// String returns the canonical wire key.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusNoReport:
		return "no_report"
	default:
		return "unknown"
	}
}

// Failing reports whether the status counts towards a failure streak.
func (s Status) Failing() bool {
	return s == StatusFail || s == StatusNoReport
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus accepts the canonical keys and the labels used in the sheets.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pass", "zaliczone", "zaliczony":
		return StatusPass, nil
	case "fail", "niezaliczone", "niezaliczony":
		return StatusFail, nil
	case "no_report", "noreport", "brak raportu", "brak":
		return StatusNoReport, nil
	}
	return StatusUnknown, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}
