package service

import (
	"io"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/notify"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/repository"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/classifier"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/dedupe"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/risk"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the record store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClassifier sets the statistical classifier. Required.
func WithClassifier(c classifier.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithEngine sets the rule engine. Defaults to the standard rule table.
func WithEngine(e *risk.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithDeduper sets the submission deduper. Defaults to an in-memory one.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithNotifier sets where alerts are delivered. Defaults to the log.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithAlertQueueSize bounds the pending alert queue.
func WithAlertQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAlertWorkers sets the number of alert delivery workers.
func WithAlertWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMaxHistoryLimit caps History's limit.
func WithMaxHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxHistory = limit
		}
	}
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithCloser registers a resource to release when the service stops.
func WithCloser(c io.Closer) Option {
	return func(s *Service) {
		if c != nil {
			s.closers = append(s.closers, c)
		}
	}
}
