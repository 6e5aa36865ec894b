package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "WELLCHECK_"
	EnvConfigFile = "WELLCHECK_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if WELLCHECK_CONFIG is set
//  3. env (prefix WELLCHECK_)
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// WELLCHECK_ALERT_QUEUE_SIZE -> alert_queue_size (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	// Slices would be merged element-wise into the defaults, so the
	// classifier block is replaced wholesale only when it is configured.
	if k.Exists("classifier") {
		cfg.Classifier = ClassifierConfig{}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values and cross-field requirements.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.DedupeBackend {
	case DedupeMemory:
	case DedupeRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for redis dedupe", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown dedupe_backend %q", ErrInvalidConfig, c.DedupeBackend)
	}
	switch c.Notifier {
	case NotifierLog:
	case NotifierSNS:
		if c.SNSTopicARN == "" {
			return fmt.Errorf("%w: sns_topic_arn is required for sns notifier", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown notifier %q", ErrInvalidConfig, c.Notifier)
	}
	if c.DedupeTTLSeconds <= 0 {
		return fmt.Errorf("%w: dedupe_ttl_seconds must be positive", ErrInvalidConfig)
	}
	if c.AlertQueueSize <= 0 || c.AlertWorkerCount <= 0 {
		return fmt.Errorf("%w: alert_queue_size and alert_worker_count must be positive", ErrInvalidConfig)
	}
	if c.MaxHistoryLimit <= 0 {
		return fmt.Errorf("%w: max_history_limit must be positive", ErrInvalidConfig)
	}
	if err := c.Classifier.Coefficients().Validate(); err != nil {
		return fmt.Errorf("%w: classifier: %w", ErrInvalidConfig, err)
	}
	return nil
}
