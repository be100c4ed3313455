package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/poprzeczka/internal/domain/types"
)

const maxBodyBytes = 64 << 10

// SubmissionHandler handles status reports.
type SubmissionHandler struct {
	deps SubmitDependencies
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(deps SubmitDependencies) *SubmissionHandler {
	return &SubmissionHandler{deps: deps}
}

// HandleSubmit handles POST /editions/{edition}/submissions. Accepted reports
// answer 201, duplicates 200.
func (h *SubmissionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"

	var req types.SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Submit(r.Context(), r.PathValue("edition"), req)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
