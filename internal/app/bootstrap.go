package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/notify"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/repository"
	"github.com/JayantA-10/AI-Stress-System/internal/config"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/classifier"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/dedupe"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// FromConfig builds the service options selected by cfg: store, deduper,
// notifier, classifier and sizing. Resources it opens are released by Stop;
// on error the ones opened so far are closed.
func FromConfig(ctx context.Context, cfg *config.Config, l logger.Logger) ([]Option, error) {
	if l == nil {
		l = logger.Nop()
	}

	clf, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithLogger(l),
		WithStore(store),
		WithClassifier(clf),
		WithAlertQueueSize(cfg.AlertQueueSize),
		WithAlertWorkers(cfg.AlertWorkerCount),
		WithMaxHistoryLimit(cfg.MaxHistoryLimit),
	}

	switch cfg.DedupeBackend {
	case config.DedupeRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			closeStore(store)
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		opts = append(opts,
			WithDeduper(dedupe.NewRedisDeduper(client, dedupe.WithRedisTTL(cfg.DedupeTTL()))),
			WithCloser(client),
		)
	default:
		opts = append(opts, WithDeduper(dedupe.NewInMemoryDeduper(
			dedupe.WithMaxSize(cfg.DedupeSize),
			dedupe.WithTTL(cfg.DedupeTTL()),
		)))
	}

	switch cfg.Notifier {
	case config.NotifierSNS:
		n, err := notify.NewSNSNotifierFromRegion(ctx, cfg.AWSRegion, cfg.SNSTopicARN)
		if err != nil {
			closeStore(store)
			return nil, err
		}
		opts = append(opts, WithNotifier(n))
	default:
		opts = append(opts, WithNotifier(notify.NewLogNotifier(l.Named("notify"))))
	}

	return opts, nil
}

// NewClassifier builds the logistic classifier from cfg's coefficients.
func NewClassifier(cfg *config.Config) (*classifier.LogisticClassifier, error) {
	clf, err := classifier.NewLogistic(cfg.Classifier.Coefficients())
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	return clf, nil
}

// OpenStore opens the record store named by cfg.StoreDriver. opts apply
// to SQL stores only.
func OpenStore(ctx context.Context, cfg *config.Config, l logger.Logger, opts ...repository.SQLOption) (repository.Store, error) {
	var dialect repository.Dialect
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		dialect = repository.DialectSQLite
	case config.StorePostgres:
		dialect = repository.DialectPostgres
	default:
		return repository.NewMemoryStore(), nil
	}
	opts = append([]repository.SQLOption{repository.WithStoreLogger(l)}, opts...)
	store, err := repository.OpenSQL(ctx, dialect, cfg.StoreDSN, opts...)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func closeStore(store repository.Store) {
	if c, ok := store.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}
