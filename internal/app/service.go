// Package service orchestrates check-in assessment: the classifier and rule
// engine produce an assessment, the store appends it to the subject's history
// and alerts are handed to the delivery workers.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/mq/queue"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/mq/worker"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/notify"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/repository"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/classifier"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/dedupe"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/risk"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/triage"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
	"github.com/JayantA-10/AI-Stress-System/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize   = 1024
	defaultWorkerCount = 2
	defaultMaxHistory  = 100
	stopTimeout        = 10 * time.Second
)

// Rejection reasons recorded in metrics.
const (
	reasonInvalidFeature   = "invalid_feature"
	reasonInvalidOutput    = "invalid_classifier_output"
	reasonClassifierFailed = "classifier_error"
	reasonUnknownSubject   = "unknown_subject"
	reasonStoreFailed      = "store_error"
)

// CheckIn is one self-reported submission.
type CheckIn struct {
	SubjectID string
	// SubmissionID is an optional client key; a repeat is rejected with
	// ErrDuplicateSubmission.
	SubmissionID string
	Features     model.FeatureVector
}

// dedupeKey scopes the submission id to its subject so ids chosen by
// different subjects never collide. Empty when no id was supplied.
func (in CheckIn) dedupeKey() string {
	if in.SubmissionID == "" {
		return ""
	}
	return in.SubjectID + "/" + in.SubmissionID
}

// ConfidencePoint is one point of a subject's confidence trend.
type ConfidencePoint struct {
	CreatedAt  time.Time       `json:"created_at"`
	Label      model.RiskLevel `json:"label"`
	Confidence float64         `json:"confidence"`
}

// History is a subject's recent records and their confidence trend.
type History struct {
	SubjectID string                   `json:"subject_id"`
	Records   []model.AssessmentRecord `json:"records"`
	// ConfidenceSeries lists the same records oldest first.
	ConfidenceSeries []ConfidencePoint `json:"confidence_series"`
}

// Service implements the API dependencies for the wellbeing system.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	classifier classifier.Classifier
	engine     *risk.Engine
	deduper    dedupe.Deduper
	notifier   notify.Notifier
	alerts     *queue.InMemoryQueue
	pool       *worker.Pool

	queueSize   int
	workerCount int
	maxHistory  int
	now         func() time.Time
	newID       func() string

	// closers are released on Stop, after the store.
	closers []io.Closer

	started bool
	logger  logger.Logger
}

// New constructs a Service. Components not supplied through options get
// in-memory defaults; a classifier must be supplied before Start.
func New(opts ...Option) *Service {
	s := &Service{
		engine:      risk.New(),
		queueSize:   defaultQueueSize,
		workerCount: defaultWorkerCount,
		maxHistory:  defaultMaxHistory,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger.Named("notify"))
	}
	return s
}

// Start creates the alert queue and starts the delivery workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.classifier == nil {
		return ErrNoClassifier
	}

	s.logger.Info(ctx, "starting wellbeing service...")

	s.alerts = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.alerts, s.notifier, worker.WithLogger(s.logger))
	s.pool.Start(context.WithoutCancel(ctx))

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateSubjectsTotal(n)
	}

	s.started = true
	s.logger.Info(ctx, "wellbeing service started",
		logger.Int("alert_workers", s.workerCount),
		logger.Int("alert_queue_size", s.queueSize),
		logger.Int("max_history_limit", s.maxHistory),
	)
	return nil
}

// Stop drains pending alerts and closes the store if it owns resources.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping wellbeing service...")

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	var errs []error
	if err := s.pool.Shutdown(stopCtx); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.started = false
	s.logger.Info(ctx, "wellbeing service stopped")
	return errors.Join(errs...)
}

// Running reports whether Start has completed and Stop has not.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// RegisterSubject adds a subject to the roster.
func (s *Service) RegisterSubject(ctx context.Context, id, displayName string) (model.Subject, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Subject{}, fmt.Errorf("%w: id must not be empty", ErrInvalidSubject)
	}
	subj := model.Subject{
		ID:          id,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.AddSubject(ctx, subj); err != nil {
		return model.Subject{}, err
	}
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateSubjectsTotal(n)
	}
	s.logger.Info(ctx, "subject registered", logger.String("subject_id", subj.ID))
	return subj, nil
}

// Assess classifies features and applies the rule engine without storing
// anything. Invalid features are rejected before the classifier is called.
func (s *Service) Assess(ctx context.Context, features model.FeatureVector) (model.Assessment, error) {
	if s.classifier == nil {
		return model.Assessment{}, ErrNoClassifier
	}
	if err := features.Validate(); err != nil {
		metrics.RecordAssessmentRejection(reasonInvalidFeature)
		return model.Assessment{}, err
	}

	start := time.Now()
	out, err := s.classifier.Classify(ctx, features)
	metrics.RecordClassifierLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordAssessmentRejection(reasonClassifierFailed)
		return model.Assessment{}, fmt.Errorf("classify: %w", err)
	}

	assessment, err := s.engine.Assess(features, out)
	if err != nil {
		metrics.RecordAssessmentRejection(reasonInvalidOutput)
		return model.Assessment{}, err
	}
	return assessment, nil
}

// Submit assesses a check-in, appends the record to the subject's history and
// queues an alert when one is raised. A full alert queue does not fail the
// submission; the stored alert flag stays authoritative.
func (s *Service) Submit(ctx context.Context, in CheckIn) (model.AssessmentRecord, error) {
	if !s.Running() {
		return model.AssessmentRecord{}, ErrNotRunning
	}
	if err := in.Features.Validate(); err != nil {
		metrics.RecordAssessmentRejection(reasonInvalidFeature)
		return model.AssessmentRecord{}, err
	}

	subj, err := s.store.Subject(ctx, in.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordAssessmentRejection(reasonUnknownSubject)
		}
		return model.AssessmentRecord{}, err
	}

	key := in.dedupeKey()
	if key != "" {
		seen, err := s.deduper.SeenAndRecord(ctx, key)
		if err != nil {
			return model.AssessmentRecord{}, fmt.Errorf("dedupe: %w", err)
		}
		if seen {
			metrics.RecordDuplicateSubmission()
			s.logger.Debug(ctx, "duplicate submission skipped",
				logger.String("submission_id", in.SubmissionID),
				logger.String("subject_id", in.SubjectID),
			)
			return model.AssessmentRecord{}, ErrDuplicateSubmission
		}
	}

	rec, err := s.assessAndAppend(ctx, in)
	if err != nil {
		s.release(ctx, key)
		return model.AssessmentRecord{}, err
	}

	metrics.RecordAssessment(string(rec.PredictedLabel), rec.BurnoutRisk, rec.Alert)
	s.logger.Info(ctx, "check-in assessed",
		logger.String("record_id", rec.ID),
		logger.String("subject_id", rec.SubjectID),
		logger.String("predicted_label", string(rec.PredictedLabel)),
		logger.Float64("burnout_risk", rec.BurnoutRisk),
		logger.Bool("alert", rec.Alert),
	)

	if rec.Alert {
		s.enqueueAlert(ctx, notify.AlertFromRecord(rec, subj.DisplayName))
	}
	return rec, nil
}

func (s *Service) assessAndAppend(ctx context.Context, in CheckIn) (model.AssessmentRecord, error) {
	assessment, err := s.Assess(ctx, in.Features)
	if err != nil {
		return model.AssessmentRecord{}, err
	}

	rec := model.AssessmentRecord{
		ID:         s.newID(),
		SubjectID:  in.SubjectID,
		Features:   in.Features,
		Assessment: assessment,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Append(ctx, rec); err != nil {
		metrics.RecordAssessmentRejection(reasonStoreFailed)
		return model.AssessmentRecord{}, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}

// release forgets a submission key whose check-in failed so it can be retried.
func (s *Service) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.deduper.Unrecord(ctx, key); err != nil {
		s.logger.Warn(ctx, "failed to release submission id",
			logger.String("submission_key", key),
			logger.Error(err),
		)
	}
}

func (s *Service) enqueueAlert(ctx context.Context, a notify.Alert) {
	s.mu.RLock()
	q := s.alerts
	s.mu.RUnlock()

	if err := q.Enqueue(ctx, a); err != nil {
		s.logger.Warn(ctx, "alert not queued",
			logger.String("record_id", a.RecordID),
			logger.String("subject_id", a.SubjectID),
			logger.Error(err),
		)
	}
}

// Latest returns the subject's most recent record.
func (s *Service) Latest(ctx context.Context, subjectID string) (model.AssessmentRecord, error) {
	if _, err := s.store.Subject(ctx, subjectID); err != nil {
		return model.AssessmentRecord{}, err
	}
	return s.store.Latest(ctx, subjectID)
}

// History returns up to limit records newest first plus the confidence series
// oldest first. limit <= 0 or above the configured maximum uses the maximum.
func (s *Service) History(ctx context.Context, subjectID string, limit int) (History, error) {
	if limit <= 0 || limit > s.maxHistory {
		limit = s.maxHistory
	}
	recs, err := s.store.History(ctx, subjectID, limit)
	if err != nil {
		return History{}, err
	}
	if recs == nil {
		recs = []model.AssessmentRecord{}
	}

	series := make([]ConfidencePoint, len(recs))
	for i, rec := range recs {
		series[len(recs)-1-i] = ConfidencePoint{
			CreatedAt:  rec.CreatedAt,
			Label:      rec.PredictedLabel,
			Confidence: rec.Confidence,
		}
	}
	return History{SubjectID: subjectID, Records: recs, ConfidenceSeries: series}, nil
}

// Roster ranks every subject by the tier of its latest record.
func (s *Service) Roster(ctx context.Context) (triage.Roster, error) {
	rows, err := s.store.LatestBySubject(ctx)
	if err != nil {
		return triage.Roster{}, fmt.Errorf("load roster: %w", err)
	}

	subjects := make([]triage.Subject, len(rows))
	for i, row := range rows {
		subjects[i] = triage.Subject{
			SubjectID:   row.Subject.ID,
			DisplayName: row.Subject.DisplayName,
			Latest:      row.Latest,
		}
	}

	roster := triage.Rank(subjects)
	metrics.UpdateRosterSummary(roster.Total, roster.HighRiskCount, roster.AlertCount)
	return roster, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"alertWorkers":    s.workerCount,
		"alertQueueSize":  s.queueSize,
		"maxHistoryLimit": s.maxHistory,
	}

	if n, err := s.store.Count(ctx); err == nil {
		stats["subjects"] = n
		metrics.UpdateSubjectsTotal(n)
	}
	if d, ok := s.deduper.(*dedupe.InMemoryDeduper); ok {
		stats["dedupeEntries"] = d.Size()
	}
	if s.started {
		stats["alertQueueLength"] = s.alerts.Len(ctx)
	}
	return stats
}
