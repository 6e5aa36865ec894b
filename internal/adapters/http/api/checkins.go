package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/JayantA-10/AI-Stress-System/internal/app"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// CheckInDependencies defines the interface for check-in submission.
type CheckInDependencies interface {
	Submit(ctx context.Context, in service.CheckIn) (Record, error)
}

// CheckInsHandler handles check-in requests.
type CheckInsHandler struct {
	deps   CheckInDependencies
	logger logger.Logger
}

// NewCheckInsHandler creates a new check-ins handler.
func NewCheckInsHandler(deps CheckInDependencies, l logger.Logger) *CheckInsHandler {
	return &CheckInsHandler{deps: deps, logger: l}
}

// checkinRequest mirrors the OpenAPI schema for POST /checkins.
type checkinRequest struct {
	SubjectID    string              `json:"subject_id"`
	SubmissionID string              `json:"submission_id"`
	Features     model.FeatureVector `json:"features"`
}

// HandlePostCheckIn handles POST /checkins requests.
func (h *CheckInsHandler) HandlePostCheckIn(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkin"
	var req checkinRequest
	if err := decodeValidated(w, r, checkinSchema, &req); err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}

	rec, err := h.deps.Submit(r.Context(), service.CheckIn{
		SubjectID:    req.SubjectID,
		SubmissionID: req.SubmissionID,
		Features:     req.Features,
	})
	if errors.Is(err, service.ErrDuplicateSubmission) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
