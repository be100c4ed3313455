package history

import (
	"sort"

	"github.com/okian/poprzeczka/internal/domain/model"
)

// Record is a participant's all-time summary.
type Record struct {
	Participant string  `json:"participant"`
	Best        int     `json:"best"`
	BestEdition string  `json:"best_edition"`
	Played      int     `json:"played"`
	Average     float64 `json:"average"`
}

// MedalCount tallies podium finishes.
type MedalCount struct {
	Participant string `json:"participant"`
	Gold        int    `json:"gold"`
	Silver      int    `json:"silver"`
	Bronze      int    `json:"bronze"`
}

// Total is the number of podium finishes.
func (m MedalCount) Total() int { return m.Gold + m.Silver + m.Bronze }

// Records summarises every participant with at least one non-paused entry,
// best result first.
func Records(a Archive) []Record {
	order := a.Editions()
	out := make([]Record, 0, len(a.Participants))
	for p, editions := range a.Participants {
		r := Record{Participant: p}
		sum := 0
		for _, label := range order {
			e, ok := editions[label]
			if !ok || e.Paused() {
				continue
			}
			r.Played++
			sum += e.Result
			if r.Played == 1 || e.Result > r.Best {
				r.Best = e.Result
				r.BestEdition = label
			}
		}
		if r.Played == 0 {
			continue
		}
		r.Average = float64(sum) / float64(r.Played)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Best != out[j].Best {
			return out[i].Best > out[j].Best
		}
		return out[i].Participant < out[j].Participant
	})
	return out
}

// Medals tallies ranks 1-3 of non-paused entries.
func Medals(a Archive) []MedalCount {
	out := make([]MedalCount, 0)
	for p, editions := range a.Participants {
		m := MedalCount{Participant: p}
		for _, e := range editions {
			if e.Paused() {
				continue
			}
			switch e.Rank {
			case 1:
				m.Gold++
			case 2:
				m.Silver++
			case 3:
				m.Bronze++
			}
		}
		if m.Total() > 0 {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Gold != b.Gold:
			return a.Gold > b.Gold
		case a.Silver != b.Silver:
			return a.Silver > b.Silver
		case a.Bronze != b.Bronze:
			return a.Bronze > b.Bronze
		}
		return a.Participant < b.Participant
	})
	return out
}

// Survival returns, for each day 1..best result of the edition, how many
// participants lasted at least that long.
func Survival(a Archive, edition string) []model.SurvivalPoint {
	var results []int
	longest := 0
	for _, editions := range a.Participants {
		e, ok := editions[edition]
		if !ok || e.Paused() {
			continue
		}
		results = append(results, e.Result)
		longest = max(longest, e.Result)
	}
	out := make([]model.SurvivalPoint, 0, longest)
	for d := 1; d <= longest; d++ {
		n := 0
		for _, r := range results {
			if r >= d {
				n++
			}
		}
		out = append(out, model.SurvivalPoint{Day: d, Count: n})
	}
	return out
}
