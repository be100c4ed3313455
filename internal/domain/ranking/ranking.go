// Package ranking computes standings and elimination states from the folded
// day-status map.
package ranking

import (
	"sort"

	"github.com/okian/poprzeczka/internal/domain/model"
)

// Calculate ranks roster as of day in the given mode.
//
// Order: score desc, then the day the score was reached asc, then name asc.
// Participants equal on score and reached day share a rank (1, 1, 3). This is
// competition ranking, not dense ranking: the rank after a tie skips ahead.
func Calculate(days model.DayStatusMap, day int, mode model.Mode, roster []string) model.Ranking {
	out := model.Ranking{
		Day:          day,
		Mode:         mode,
		Rows:         []model.Row{},
		Eliminations: map[string]model.Elimination{},
	}
	if len(roster) == 0 || len(days) == 0 || day < 1 {
		return out
	}

	pending := mode == model.ModeLive
	for _, p := range roster {
		elim := Evaluate(days, p, day, pending)
		out.Eliminations[p] = elim

		limit := day
		if elim.Eliminated {
			limit = elim.EliminatedOn
		}
		score, reached := Score(days, p, limit)
		_, reported := days.Entry(p, day)
		out.Rows = append(out.Rows, model.Row{
			Participant:  p,
			Score:        score,
			Eliminated:   elim.Eliminated,
			EliminatedOn: elim.EliminatedOn,
			State:        elim.State,
			ReachedOn:    reached,
			Reported:     reported,
		})
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ReachedOn != b.ReachedOn {
			return a.ReachedOn < b.ReachedOn
		}
		return a.Participant < b.Participant
	})
	assignRanks(out.Rows)
	return out
}

// Score counts Pass days in [1, upTo] and returns the day the last of them
// was logged (0 when the score is 0).
func Score(days model.DayStatusMap, participant string, upTo int) (score, reachedOn int) {
	for d := 1; d <= upTo; d++ {
		if e, ok := days.Entry(participant, d); ok && e.Status == model.StatusPass {
			score++
			reachedOn = d
		}
	}
	return score, reachedOn
}

func assignRanks(rows []model.Row) {
	for i := range rows {
		if i > 0 && rows[i].Score == rows[i-1].Score && rows[i].ReachedOn == rows[i-1].ReachedOn {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
