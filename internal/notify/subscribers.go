package notify

import (
	"fmt"
	"strings"

	"github.com/okian/poprzeczka/internal/domain/model"
)

// Subscriber registry columns.
const (
	ColParticipant      = "participant"
	ColEmail            = "email"
	ColRiskAlerts       = "risk_alerts"
	ColResultBroadcasts = "result_broadcasts"
)

// RegistryHeaders is the header row of a fresh subscriber sheet.
var RegistryHeaders = []string{ColParticipant, ColEmail, ColRiskAlerts, ColResultBroadcasts}

// Subscriber is one row of the registry. A nil preference means the cell was
// empty or unreadable.
type Subscriber struct {
	Participant      string
	Email            string
	RiskAlerts       *bool
	ResultBroadcasts *bool
}

// WantsAlerts reports whether risk and elimination alerts go to s. Unset
// defaults to yes.
func (s Subscriber) WantsAlerts() bool {
	return s.Email != "" && (s.RiskAlerts == nil || *s.RiskAlerts)
}

// WantsBroadcasts reports whether s opted into standings broadcasts. Unset
// defaults to no.
func (s Subscriber) WantsBroadcasts() bool {
	return s.Email != "" && s.ResultBroadcasts != nil && *s.ResultBroadcasts
}

// Registry indexes subscribers by participant.
type Registry struct {
	byName map[string]Subscriber
	order  []string
}

// ParseRegistry reads the subscriber sheet. Only participant and email are
// required columns. A participant listed twice keeps the later row.
func ParseRegistry(t model.Table) (Registry, error) {
	idx := t.Index()
	for _, col := range []string{ColParticipant, ColEmail} {
		if _, ok := idx[col]; !ok {
			return Registry{}, fmt.Errorf("%w: missing column %q", ErrRegistry, col)
		}
	}

	r := Registry{byName: make(map[string]Subscriber)}
	for _, row := range t.Rows {
		s := Subscriber{
			Participant:      strings.TrimSpace(cell(row, idx, ColParticipant)),
			Email:            strings.TrimSpace(cell(row, idx, ColEmail)),
			RiskAlerts:       parseFlag(cell(row, idx, ColRiskAlerts)),
			ResultBroadcasts: parseFlag(cell(row, idx, ColResultBroadcasts)),
		}
		if s.Participant == "" {
			continue
		}
		if _, seen := r.byName[s.Participant]; !seen {
			r.order = append(r.order, s.Participant)
		}
		r.byName[s.Participant] = s
	}
	return r, nil
}

// Lookup returns the subscriber entry for participant.
func (r Registry) Lookup(participant string) (Subscriber, bool) {
	s, ok := r.byName[participant]
	return s, ok
}

// BroadcastRecipients lists the addresses opted into broadcasts, in sheet order.
func (r Registry) BroadcastRecipients() []string {
	var out []string
	for _, name := range r.order {
		if s := r.byName[name]; s.WantsBroadcasts() {
			out = append(out, s.Email)
		}
	}
	return out
}

func parseFlag(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "tak", "1", "x":
		v = true
	case "false", "no", "nie", "0":
		v = false
	default:
		return nil
	}
	return &v
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
