// Package config defines service configuration and its defaults.
package config

import (
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/classifier"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Dedupe backends.
const (
	DedupeMemory = "memory"
	DedupeRedis  = "redis"
)

// Notifiers.
const (
	NotifierLog = "log"
	NotifierSNS = "sns"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects memory, sqlite or postgres persistence.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the file path (sqlite) or connection string (postgres).
	StoreDSN string `koanf:"store_dsn"`

	// DedupeBackend selects the check-in idempotency backend.
	DedupeBackend string `koanf:"dedupe_backend"`

	// DedupeSize bounds the in-memory dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DedupeTTLSeconds is how long a submission id is remembered.
	DedupeTTLSeconds int `koanf:"dedupe_ttl_seconds"`

	// RedisAddr is used when DedupeBackend is redis.
	RedisAddr string `koanf:"redis_addr"`

	// AlertQueueSize bounds the pending alert queue.
	AlertQueueSize int `koanf:"alert_queue_size"`

	// AlertWorkerCount sets the number of alert delivery workers.
	AlertWorkerCount int `koanf:"alert_worker_count"`

	// Notifier selects where alerts go: log or sns.
	Notifier string `koanf:"notifier"`

	// SNSTopicARN is required when Notifier is sns.
	SNSTopicARN string `koanf:"sns_topic_arn"`

	// AWSRegion is passed to the AWS SDK config loader.
	AWSRegion string `koanf:"aws_region"`

	// MaxHistoryLimit caps GET /subjects/{id}/history?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// Classifier holds the logistic model coefficients.
	Classifier ClassifierConfig `koanf:"classifier"`
}

// ClassifierConfig is the YAML shape of classifier.Coefficients.
type ClassifierConfig struct {
	Labels     []string    `koanf:"labels"`
	Intercepts []float64   `koanf:"intercepts"`
	Weights    [][]float64 `koanf:"weights"`
}

// Coefficients converts the config into classifier coefficients.
func (c ClassifierConfig) Coefficients() classifier.Coefficients {
	labels := make([]model.RiskLevel, len(c.Labels))
	for i, l := range c.Labels {
		labels[i] = model.RiskLevel(l)
	}
	return classifier.Coefficients{Labels: labels, Intercepts: c.Intercepts, Weights: c.Weights}
}

// DedupeTTL returns DedupeTTLSeconds as a duration.
func (c *Config) DedupeTTL() time.Duration {
	return time.Duration(c.DedupeTTLSeconds) * time.Second
}

// DefaultClassifier returns the built-in coefficients. Features are ordered
// study hours, sleep hours, mood, assignment pressure, consistency, trend.
func DefaultClassifier() ClassifierConfig {
	return ClassifierConfig{
		Labels:     []string{string(model.LevelLow), string(model.LevelModerate), string(model.LevelHigh)},
		Intercepts: []float64{-8, 0, 4},
		Weights: [][]float64{
			{-0.36, 0.72, 0.6, -0.6, 0.36, 0.96},
			{0, 0, 0, 0, 0, 0},
			{0.36, -0.72, -0.6, 0.6, -0.36, -0.96},
		},
	}
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		StoreDriver:      StoreMemory,
		DedupeBackend:    DedupeMemory,
		DedupeSize:       50_000,
		DedupeTTLSeconds: 24 * 60 * 60,
		RedisAddr:        "localhost:6379",
		AlertQueueSize:   1024,
		AlertWorkerCount: 2,
		Notifier:         NotifierLog,
		AWSRegion:        "us-east-1",
		MaxHistoryLimit:  100,
		Classifier:       DefaultClassifier(),
	}
}
