package api

import (
	"net/http"
)

// HistoryHandler serves the archive of past editions.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleEditions handles GET /history/editions.
func (h *HistoryHandler) HandleEditions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.HistoryEditions())
}

// HandleRecords handles GET /history/records.
func (h *HistoryHandler) HandleRecords(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Records())
}

// HandleMedals handles GET /history/medals.
func (h *HistoryHandler) HandleMedals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Medals())
}

// HandleSurvival handles GET /history/survival?edition=L.
func (h *HistoryHandler) HandleSurvival(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history_survival"

	edition := r.URL.Query().Get("edition")
	if edition == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	points, err := h.deps.HistorySurvival(edition)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, points)
}
