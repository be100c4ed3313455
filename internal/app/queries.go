package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/okian/poprzeczka/internal/adapters/repository"
	"github.com/okian/poprzeczka/internal/domain/fold"
	"github.com/okian/poprzeczka/internal/domain/history"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/ranking"
	"github.com/okian/poprzeczka/internal/domain/stage"
	"github.com/okian/poprzeczka/internal/domain/types"
	"github.com/okian/poprzeczka/pkg/logger"
	"github.com/okian/poprzeczka/pkg/metrics"
)

// load reads and folds an edition log. Store and schema problems degrade to an
// empty result plus a diagnostic.
func (s *Service) load(ctx context.Context, ed model.Edition) (fold.Result, []string) {
	empty := fold.Result{Days: model.DayStatusMap{}, Dropped: map[string]int{}}

	table, err := s.store.ReadAll(ctx, ed.Sheet)
	if err != nil {
		kind := "read"
		if errors.Is(err, repository.ErrSheetNotFound) {
			kind = "sheet_not_found"
		}
		metrics.RecordErrorByComponent("service", kind)
		s.logger.Warn(ctx, "edition log unavailable", logger.String("edition", ed.ID), logger.Error(err))
		return empty, []string{err.Error()}
	}

	start := time.Now()
	res, err := fold.Process(table, ed.Roster)
	metrics.RecordFoldDuration(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordSchemaMismatch()
		s.logger.Warn(ctx, "edition log has the wrong columns", logger.String("edition", ed.ID), logger.Error(err))
		return empty, []string{err.Error()}
	}

	var diags []string
	for _, reason := range slices.Sorted(maps.Keys(res.Dropped)) {
		n := res.Dropped[reason]
		metrics.RecordFoldDropped(reason, n)
		diags = append(diags, fmt.Sprintf("%d rows dropped: %s", n, reason))
	}
	return res, diags
}

// Ranking computes standings for editionID. Day 0 means the latest reported
// day in live mode and the official day in official mode.
func (s *Service) Ranking(ctx context.Context, editionID string, day int, mode model.Mode) (types.RankingView, error) {
	ed, err := s.edition(editionID)
	if err != nil {
		return types.RankingView{}, err
	}
	if day < 0 {
		return types.RankingView{}, fmt.Errorf("%w: day must not be negative", ErrInvalidQuery)
	}

	res, diags := s.load(ctx, ed)
	if day == 0 {
		day = res.MaxDay
		if mode == model.ModeOfficial {
			st := stage.LastComplete(res.Days, res.MaxDay, ed.Roster)
			day = st.Official
			if st.Fallback {
				diags = append(diags, "no complete day yet; showing day 1")
			}
		}
	} else if mode == model.ModeOfficial && !stage.Complete(res.Days, day, ed.Roster) {
		diags = append(diags, fmt.Sprintf("day %d is not complete", day))
	}

	metrics.RecordRankingComputation(string(mode))
	return types.RankingView{
		Edition:     ed.ID,
		Ranking:     ranking.Calculate(res.Days, day, mode, ed.Roster),
		MaxDay:      res.MaxDay,
		Diagnostics: diags,
	}, nil
}

// Stage returns the official day of editionID with its standings.
func (s *Service) Stage(ctx context.Context, editionID string) (types.StageView, error) {
	ed, err := s.edition(editionID)
	if err != nil {
		return types.StageView{}, err
	}
	res, diags := s.load(ctx, ed)
	st := stage.LastComplete(res.Days, res.MaxDay, ed.Roster)
	metrics.UpdateOfficialDay(ed.ID, st.Official)
	metrics.RecordRankingComputation(string(model.ModeOfficial))

	return types.StageView{
		Edition:     ed.ID,
		Stage:       st,
		MaxDay:      res.MaxDay,
		Standings:   ranking.Calculate(res.Days, st.Official, model.ModeOfficial, ed.Roster).Rows,
		Diagnostics: diags,
	}, nil
}

// Survival returns the live survival curve of editionID.
func (s *Service) Survival(ctx context.Context, editionID string) (types.SurvivalView, error) {
	ed, err := s.edition(editionID)
	if err != nil {
		return types.SurvivalView{}, err
	}
	res, diags := s.load(ctx, ed)
	return types.SurvivalView{
		Edition:     ed.ID,
		Points:      ranking.Survival(res.Days, res.MaxDay, ed.Roster),
		Diagnostics: diags,
	}, nil
}

// Records returns per-participant bests from the archive.
func (s *Service) Records() []history.Record { return history.Records(s.archive) }

// Medals returns medal tallies from the archive.
func (s *Service) Medals() []history.MedalCount { return history.Medals(s.archive) }

// HistoryEditions lists the archived edition labels.
func (s *Service) HistoryEditions() []string { return s.archive.Editions() }

// HistorySurvival returns the survival curve of an archived edition.
func (s *Service) HistorySurvival(edition string) ([]model.SurvivalPoint, error) {
	for _, e := range s.archive.Editions() {
		if e == edition {
			return history.Survival(s.archive, edition), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEdition, edition)
}
