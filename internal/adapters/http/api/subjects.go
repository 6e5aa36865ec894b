package api

import (
	"context"
	"net/http"

	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// SubjectDependencies defines the interface for subject registration.
type SubjectDependencies interface {
	RegisterSubject(ctx context.Context, id, displayName string) (Subject, error)
}

// SubjectsHandler handles subject requests.
type SubjectsHandler struct {
	deps   SubjectDependencies
	logger logger.Logger
}

// NewSubjectsHandler creates a new subjects handler.
func NewSubjectsHandler(deps SubjectDependencies, l logger.Logger) *SubjectsHandler {
	return &SubjectsHandler{deps: deps, logger: l}
}

type subjectRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// HandleCreate handles POST /subjects requests.
func (h *SubjectsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_subject"
	var req subjectRequest
	if err := decodeValidated(w, r, subjectSchema, &req); err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	subj, err := h.deps.RegisterSubject(r.Context(), req.ID, req.DisplayName)
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, subj)
}
