package api

import (
	"context"
	"net/http"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/triage"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// TriageDependencies defines the interface for the counselor roster.
type TriageDependencies interface {
	Roster(ctx context.Context) (Roster, error)
}

// TriageHandler handles roster requests.
type TriageHandler struct {
	deps   TriageDependencies
	logger logger.Logger
}

// NewTriageHandler creates a new triage handler.
func NewTriageHandler(deps TriageDependencies, l logger.Logger) *TriageHandler {
	return &TriageHandler{deps: deps, logger: l}
}

// HandleTriage handles GET /triage requests.
func (h *TriageHandler) HandleTriage(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_triage"
	roster, err := h.deps.Roster(r.Context())
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	if roster.Entries == nil {
		roster.Entries = []triage.Entry{}
	}
	writeJSON(w, http.StatusOK, roster)
}
