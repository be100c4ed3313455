package model

import (
	"fmt"
	"strings"
)

// Mode selects between provisional and confirmed standings.
type Mode string

// Ranking modes.
const (
	ModeLive     Mode = "live"
	ModeOfficial Mode = "official"
)

// ParseMode maps a canonical identifier to a Mode. Display labels are not accepted.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.TrimSpace(raw)) {
	case ModeLive:
		return ModeLive, nil
	case ModeOfficial:
		return ModeOfficial, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
}

// State is a participant's position in the elimination state machine.
type State string

// Elimination states.
const (
	StateActive     State = "active"
	StateAtRisk     State = "at_risk"
	StateEliminated State = "eliminated"
)

// Elimination is the derived elimination state as of some day.
type Elimination struct {
	State        State `json:"state"`
	Eliminated   bool  `json:"eliminated"`
	EliminatedOn int   `json:"eliminated_on,omitempty"` // 0 unless eliminated
	Streak       int   `json:"streak"`                  // failing days ending at the evaluated day
}

// Row is one line of the standings table.
type Row struct {
	Participant  string `json:"participant"`
	Rank         int    `json:"rank"`
	Score        int    `json:"score"`
	Eliminated   bool   `json:"eliminated"`
	EliminatedOn int    `json:"eliminated_on,omitempty"`
	State        State  `json:"state"`
	ReachedOn    int    `json:"reached_on"` // first day the current score was reached
	Reported     bool   `json:"reported"`   // has an entry for the ranking day
}

// Ranking is the standings table and elimination map for one day and mode.
type Ranking struct {
	Day          int                    `json:"day"`
	Mode         Mode                   `json:"mode"`
	Rows         []Row                  `json:"rows"`
	Eliminations map[string]Elimination `json:"eliminations"`
}

// SurvivalPoint is the number of participants still in the game on a day.
type SurvivalPoint struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}
