package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// RecordDependencies defines the interface for per-subject record reads.
type RecordDependencies interface {
	Latest(ctx context.Context, subjectID string) (Record, error)
	History(ctx context.Context, subjectID string, limit int) (History, error)
}

// RecordsHandler handles latest and history requests.
type RecordsHandler struct {
	deps     RecordDependencies
	maxLimit int
	logger   logger.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies, maxLimit int, l logger.Logger) *RecordsHandler {
	return &RecordsHandler{deps: deps, maxLimit: maxLimit, logger: l}
}

// HandleLatest handles GET /subjects/{id}/latest requests.
func (h *RecordsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_latest"
	rec, err := h.deps.Latest(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleHistory handles GET /subjects/{id}/history?limit=N requests. A
// missing limit returns up to the configured maximum.
func (h *RecordsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	limit := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(r.Context(), w, h.logger, NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			fail(r.Context(), w, h.logger, WrapKind(op, ErrLimitExceeded, fmt.Errorf("limit must be <= %d", h.maxLimit)))
			return
		}
		limit = n
	}

	hist, err := h.deps.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
