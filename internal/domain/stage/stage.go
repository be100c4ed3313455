// Package stage finds the last competition day that every still-active
// participant has reported, i.e. the day the official ranking is based on.
package stage

import (
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/ranking"
)

// Stage is the outcome of the completion search.
type Stage struct {
	Days     []int `json:"days"`     // 1..Official, most recent last
	Official int   `json:"official"` // the official day
	Fallback bool  `json:"fallback"` // no day was complete; Official defaults to 1
}

// LastComplete walks from maxDay down to 1 and stops at the first day on which
// every participant still active after the previous day has an entry.
func LastComplete(days model.DayStatusMap, maxDay int, roster []string) Stage {
	for d := maxDay; d >= 1; d-- {
		if Complete(days, d, roster) {
			return Stage{Days: span(d), Official: d}
		}
	}
	return Stage{Days: []int{1}, Official: 1, Fallback: true}
}

// Complete reports whether all participants active as of day-1 reported day.
// A day nobody is active for is not complete.
func Complete(days model.DayStatusMap, day int, roster []string) bool {
	active := 0
	for _, p := range roster {
		if day > 1 && ranking.Evaluate(days, p, day-1, true).Eliminated {
			continue
		}
		active++
		if _, ok := days.Entry(p, day); !ok {
			return false
		}
	}
	return active > 0
}

func span(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
