package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/poprzeczka/internal/domain/model"
)

// EditionHandler serves the per-edition read routes.
type EditionHandler struct {
	deps EditionDependencies
}

// NewEditionHandler creates a new edition handler.
func NewEditionHandler(deps EditionDependencies) *EditionHandler {
	return &EditionHandler{deps: deps}
}

// HandleList handles GET /editions.
func (h *EditionHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Editions())
}

// HandleRanking handles GET /editions/{edition}/ranking?mode=live|official&day=N.
// Mode defaults to live, day to 0 (latest for the mode).
func (h *EditionHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ranking"

	q := r.URL.Query()
	mode := model.ModeLive
	if raw := q.Get("mode"); raw != "" {
		m, err := model.ParseMode(raw)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		mode = m
	}
	day := 0
	if raw := q.Get("day"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			writeFailure(w, WrapKind(op, ErrBadRequest, fmt.Errorf("day must be a non-negative integer, got %q", raw)))
			return
		}
		day = d
	}

	view, err := h.deps.Ranking(r.Context(), r.PathValue("edition"), day, mode)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleStage handles GET /editions/{edition}/stage.
func (h *EditionHandler) HandleStage(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Stage(r.Context(), r.PathValue("edition"))
	if err != nil {
		writeFailure(w, Wrap("api.get_stage", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSurvival handles GET /editions/{edition}/survival.
func (h *EditionHandler) HandleSurvival(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Survival(r.Context(), r.PathValue("edition"))
	if err != nil {
		writeFailure(w, Wrap("api.get_survival", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
