package ranking

import "github.com/okian/poprzeczka/internal/domain/model"

// StrikeLimit is the number of consecutive failing days that eliminates.
const StrikeLimit = 3

// atRiskStreak is the streak length that puts a participant at risk.
const atRiskStreak = StrikeLimit - 1

// Evaluate replays days 1..upTo for participant and returns the elimination
// state at upTo. A missing entry counts as failing, except on upTo when
// pending is set: an unreported target day is not judged yet.
//
// The state is recomputed from the map on every call, so a corrected row for
// a past day can lift an elimination.
func Evaluate(days model.DayStatusMap, participant string, upTo int, pending bool) model.Elimination {
	streak := 0
	for d := 1; d <= upTo; d++ {
		e, ok := days.Entry(participant, d)
		if !ok && pending && d == upTo {
			break
		}
		if !ok || e.Status.Failing() {
			streak++
		} else {
			streak = 0
		}
		if streak >= StrikeLimit {
			return model.Elimination{
				State:        model.StateEliminated,
				Eliminated:   true,
				EliminatedOn: d,
				Streak:       streak,
			}
		}
	}
	state := model.StateActive
	if streak == atRiskStreak {
		state = model.StateAtRisk
	}
	return model.Elimination{State: state, Streak: streak}
}

// Survival counts participants not eliminated on each day 1..maxDay. The last
// day is treated as pending.
func Survival(days model.DayStatusMap, maxDay int, roster []string) []model.SurvivalPoint {
	out := make([]model.SurvivalPoint, 0, maxDay)
	for d := 1; d <= maxDay; d++ {
		alive := 0
		for _, p := range roster {
			if !Evaluate(days, p, d, d == maxDay).Eliminated {
				alive++
			}
		}
		out = append(out, model.SurvivalPoint{Day: d, Count: alive})
	}
	return out
}
