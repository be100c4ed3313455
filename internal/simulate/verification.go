package simulate

import (
	"context"
	"fmt"

	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/ranking"
	"github.com/okian/poprzeczka/internal/domain/types"
	"github.com/okian/poprzeczka/pkg/logger"
)

// fetchRanking reads the live ranking for day from the service.
func fetchRanking(ctx context.Context, cfg *Config, client *HTTPClient, day int) (types.RankingView, error) {
	var view types.RankingView
	url := fmt.Sprintf("%s/editions/%s/ranking?mode=live&day=%d", cfg.BaseURL, cfg.Edition, day)
	if err := client.getJSON(ctx, url, &view); err != nil {
		return types.RankingView{}, fmt.Errorf("ranking: %w", err)
	}
	return view, nil
}

// verifyRanking checks that got matches what the plan should produce. Rank,
// score and elimination must agree row by row.
func verifyRanking(got model.Ranking, expected model.DayStatusMap, roster []string) error {
	want := ranking.Calculate(expected, got.Day, model.ModeLive, roster)
	if len(got.Rows) != len(want.Rows) {
		return fmt.Errorf("%w: %d rows, expected %d", ErrMismatch, len(got.Rows), len(want.Rows))
	}
	for i := range want.Rows {
		g, w := got.Rows[i], want.Rows[i]
		if g.Participant != w.Participant || g.Rank != w.Rank || g.Score != w.Score || g.Eliminated != w.Eliminated {
			return fmt.Errorf("%w: row %d is %s rank %d score %d eliminated %t, expected %s rank %d score %d eliminated %t",
				ErrMismatch, i+1,
				g.Participant, g.Rank, g.Score, g.Eliminated,
				w.Participant, w.Rank, w.Score, w.Eliminated)
		}
	}
	return nil
}

func displayStandings(ctx context.Context, r model.Ranking, top int) {
	log := logger.OrGlobal(nil).Named("simulate")
	for i, row := range r.Rows {
		if i == top {
			break
		}
		log.Info(ctx, "standing",
			logger.Int("rank", row.Rank),
			logger.String("participant", row.Participant),
			logger.Int("score", row.Score),
			logger.String("state", string(row.State)))
	}
}
