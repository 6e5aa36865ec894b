// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/JayantA-10/AI-Stress-System/internal/app"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/triage"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

const defaultMaxHistoryLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	SubjectDependencies
	CheckInDependencies
	RecordDependencies
	TriageDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	subjectsHandler *SubjectsHandler
	checkinsHandler *CheckInsHandler
	recordsHandler  *RecordsHandler
	triageHandler   *TriageHandler
}

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger          logger.Logger
	maxHistoryLimit int
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxHistoryLimit caps GET /subjects/{id}/history?limit.
func WithMaxHistoryLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxHistoryLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{logger: logger.Nop(), maxHistoryLimit: defaultMaxHistoryLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		subjectsHandler: NewSubjectsHandler(deps, o.logger),
		checkinsHandler: NewCheckInsHandler(deps, o.logger),
		recordsHandler:  NewRecordsHandler(deps, o.maxHistoryLimit, o.logger),
		triageHandler:   NewTriageHandler(deps, o.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /subjects", MetricsMiddleware(s.subjectsHandler.HandleCreate, "subjects"))
	mux.HandleFunc("POST /checkins", MetricsMiddleware(s.checkinsHandler.HandlePostCheckIn, "checkins"))
	mux.HandleFunc("GET /subjects/{id}/latest", MetricsMiddleware(s.recordsHandler.HandleLatest, "latest"))
	mux.HandleFunc("GET /subjects/{id}/history", MetricsMiddleware(s.recordsHandler.HandleHistory, "history"))
	mux.HandleFunc("GET /triage", MetricsMiddleware(s.triageHandler.HandleTriage, "triage"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Type aliases keep handler signatures readable.
type (
	Subject = model.Subject
	Record  = model.AssessmentRecord
	History = service.History
	Roster  = triage.Roster
)

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

// fail maps err to a status and writes it; 5xx errors are logged.
func fail(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Int("status", status), logger.Error(err))
	}
	writeError(w, status, code, err)
}
