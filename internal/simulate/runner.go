// Package simulate plays a season of an edition against a running service
// and checks the standings it reports.
package simulate

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/okian/poprzeczka/internal/domain/types"
	"github.com/okian/poprzeczka/pkg/logger"
)

// Run plays cfg.Days days, sends the corrections, then verifies the final
// live ranking. It returns the stats even when verification fails.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if err := validate(cfg); err != nil {
		return stats, err
	}
	log := logger.OrGlobal(nil).Named("simulate")
	log.Info(ctx, "starting season simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("edition", cfg.Edition),
		logger.Int("days", cfg.Days),
		logger.Float64("failRate", cfg.FailRate),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	if err := checkServiceHealth(ctx, cfg, client); err != nil {
		return stats, err
	}
	roster, err := fetchRoster(ctx, cfg, client)
	if err != nil {
		return stats, err
	}

	plan := generatePlan(cfg, roster)
	stats.Planned = plan.Total()
	stats.Corrections = len(plan.Corrections)

	var c counters
	for d, reqs := range plan.Days {
		submitBatch(ctx, cfg, client, reqs, &c)
		if cfg.Verbose {
			log.Info(ctx, "day played", logger.Int("day", d+1), logger.Int("reports", len(reqs)))
		}
	}
	submitBatch(ctx, cfg, client, plan.Corrections, &c)

	stats.Submitted = int(c.submitted.Load())
	stats.Accepted = int(c.accepted.Load())
	stats.Duplicate = int(c.duplicate.Load())
	stats.Failed = int(c.failed.Load())
	if err := ctx.Err(); err != nil {
		return finish(stats), fmt.Errorf("simulation interrupted: %w", err)
	}

	view, err := fetchRanking(ctx, cfg, client, cfg.Days)
	if err != nil {
		return finish(stats), err
	}
	for _, row := range view.Ranking.Rows {
		if row.Eliminated {
			stats.Eliminated++
		}
	}
	displayStandings(ctx, view.Ranking, 10)

	stats = finish(stats)
	displayFinalStats(ctx, stats)
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d submissions failed", stats.Failed)
	}
	return stats, verifyRanking(view.Ranking, plan.Expected(), roster)
}

func validate(cfg *Config) error {
	switch {
	case cfg.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case cfg.Edition == "":
		return fmt.Errorf("%w: edition is required", ErrInvalidConfig)
	case cfg.Days < 1:
		return fmt.Errorf("%w: days must be positive", ErrInvalidConfig)
	case cfg.FailRate < 0 || cfg.FailRate > 1:
		return fmt.Errorf("%w: fail rate must be within [0, 1]", ErrInvalidConfig)
	case cfg.CorrectionRate < 0 || cfg.CorrectionRate > 1:
		return fmt.Errorf("%w: correction rate must be within [0, 1]", ErrInvalidConfig)
	case cfg.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// checkServiceHealth verifies the service answers on /healthz.
func checkServiceHealth(ctx context.Context, cfg *Config, client *HTTPClient) error {
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func fetchRoster(ctx context.Context, cfg *Config, client *HTTPClient) ([]string, error) {
	var eds []types.EditionView
	if err := client.getJSON(ctx, cfg.BaseURL+"/editions", &eds); err != nil {
		return nil, fmt.Errorf("editions: %w", err)
	}
	i := slices.IndexFunc(eds, func(e types.EditionView) bool { return e.ID == cfg.Edition })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEdition, cfg.Edition)
	}
	return eds[i].Roster, nil
}

func finish(s Stats) Stats {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

func displayFinalStats(ctx context.Context, s Stats) {
	var successRate, perSecond float64
	if s.Submitted > 0 {
		successRate = float64(s.Accepted+s.Duplicate) / float64(s.Submitted) * PercentageMultiplier
	}
	if s.Duration > 0 {
		perSecond = float64(s.Submitted) / s.Duration.Seconds()
	}
	logger.OrGlobal(nil).Named("simulate").Info(ctx, "final statistics",
		logger.Int("planned", s.Planned),
		logger.Int("submitted", s.Submitted),
		logger.Int("accepted", s.Accepted),
		logger.Int("duplicate", s.Duplicate),
		logger.Int("failed", s.Failed),
		logger.Int("corrections", s.Corrections),
		logger.Int("eliminated", s.Eliminated),
		logger.Duration("duration", s.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
