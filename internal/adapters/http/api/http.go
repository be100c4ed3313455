// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/poprzeczka/internal/app"
	"github.com/okian/poprzeczka/internal/domain/history"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/types"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	SubmitDependencies
	EditionDependencies
	HistoryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	submissionHandler *SubmissionHandler
	editionHandler    *EditionHandler
	historyHandler    *HistoryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		submissionHandler: NewSubmissionHandler(deps),
		editionHandler:    NewEditionHandler(deps),
		historyHandler:    NewHistoryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /editions", MetricsMiddleware(s.editionHandler.HandleList, "editions"))
	mux.HandleFunc("POST /editions/{edition}/submissions", MetricsMiddleware(s.submissionHandler.HandleSubmit, "submissions"))
	mux.HandleFunc("GET /editions/{edition}/ranking", MetricsMiddleware(s.editionHandler.HandleRanking, "ranking"))
	mux.HandleFunc("GET /editions/{edition}/stage", MetricsMiddleware(s.editionHandler.HandleStage, "stage"))
	mux.HandleFunc("GET /editions/{edition}/survival", MetricsMiddleware(s.editionHandler.HandleSurvival, "survival"))

	mux.HandleFunc("GET /history/editions", MetricsMiddleware(s.historyHandler.HandleEditions, "history_editions"))
	mux.HandleFunc("GET /history/records", MetricsMiddleware(s.historyHandler.HandleRecords, "history_records"))
	mux.HandleFunc("GET /history/medals", MetricsMiddleware(s.historyHandler.HandleMedals, "history_medals"))
	mux.HandleFunc("GET /history/survival", MetricsMiddleware(s.historyHandler.HandleSurvival, "history_survival"))
}

// SubmitDependencies is what POST /editions/{edition}/submissions needs.
type SubmitDependencies interface {
	Submit(ctx context.Context, editionID string, req types.SubmitRequest) (types.SubmitResult, error)
}

// EditionDependencies is what the per-edition read routes need.
type EditionDependencies interface {
	Editions() []types.EditionView
	Ranking(ctx context.Context, editionID string, day int, mode model.Mode) (types.RankingView, error)
	Stage(ctx context.Context, editionID string) (types.StageView, error)
	Survival(ctx context.Context, editionID string) (types.SurvivalView, error)
}

// HistoryDependencies is what the archive routes need.
type HistoryDependencies interface {
	HistoryEditions() []string
	Records() []history.Record
	Medals() []history.MedalCount
	HistorySurvival(edition string) ([]model.SurvivalPoint, error)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an error kind to a status code and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidSubmission),
		errors.Is(err, service.ErrInvalidQuery),
		errors.Is(err, model.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, service.ErrUnknownEdition):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
