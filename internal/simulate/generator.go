package simulate

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/ranking"
	"github.com/okian/poprzeczka/internal/domain/types"
)

// Plan is the full list of reports for a season, grouped by day, plus the
// corrections sent once every day has been played.
type Plan struct {
	Days        [][]types.SubmitRequest
	Corrections []types.SubmitRequest
}

// Total is the number of requests in the plan.
func (p Plan) Total() int {
	n := len(p.Corrections)
	for _, d := range p.Days {
		n += len(d)
	}
	return n
}

// Expected folds the plan the way the service does: the correction sent last
// wins.
func (p Plan) Expected() model.DayStatusMap {
	days := model.DayStatusMap{}
	apply := func(r types.SubmitRequest) {
		s, err := model.ParseStatus(r.Status)
		if err != nil {
			return
		}
		days.Set(r.Participant, r.Day, model.DayEntry{Status: s, Notes: r.Notes})
	}
	for _, d := range p.Days {
		for _, r := range d {
			apply(r)
		}
	}
	for _, r := range p.Corrections {
		apply(r)
	}
	return days
}

// generatePlan draws a season for roster. A participant stops reporting after
// the third failing day in a row.
func generatePlan(cfg *Config, roster []string) Plan {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	plan := Plan{Days: make([][]types.SubmitRequest, cfg.Days)}
	streak := make(map[string]int, len(roster))

	for d := 1; d <= cfg.Days; d++ {
		for _, p := range roster {
			if streak[p] >= ranking.StrikeLimit {
				continue
			}
			status := model.StatusPass
			if rng.Float64() < cfg.FailRate {
				status = model.StatusFail
				streak[p]++
			} else {
				streak[p] = 0
			}
			req := newRequest(p, d, status)
			plan.Days[d-1] = append(plan.Days[d-1], req)

			if rng.Float64() < cfg.CorrectionRate {
				flipped := model.StatusPass
				if status == model.StatusPass {
					flipped = model.StatusFail
				}
				fix := newRequest(p, d, flipped)
				fix.Notes = "correction"
				plan.Corrections = append(plan.Corrections, fix)
			}
		}
	}
	return plan
}

func newRequest(participant string, day int, status model.Status) types.SubmitRequest {
	return types.SubmitRequest{
		ID:          uuid.NewString(),
		Submitter:   participant,
		Participant: participant,
		Day:         day,
		Status:      status.String(),
	}
}
