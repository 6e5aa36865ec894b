// Package simulate drives a running wellcheck service over HTTP: it registers
// subjects, posts generated check-ins concurrently and checks the triage
// roster that results.
package simulate

import (
	"errors"
	"runtime"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Subjects    int           // Number of subjects to register
	CheckIns    int           // Check-ins per subject
	Concurrency int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Seed for the feature generator
	// DuplicateEvery replays every Nth submission id; zero disables replays.
	DuplicateEvery int
}

// DefaultConfig returns the settings used when flags are not given.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:9080",
		Subjects:    20,
		CheckIns:    5,
		Concurrency: runtime.NumCPU() * 2,
		Timeout:     10 * time.Second,
		Seed:        1,
	}
}

// Validate checks that the run is well formed.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("base url is required"))
	case c.Subjects < 1:
		return errors.Join(ErrInvalidConfig, errors.New("subjects must be >= 1"))
	case c.CheckIns < 1:
		return errors.Join(ErrInvalidConfig, errors.New("check-ins must be >= 1"))
	case c.Concurrency < 1:
		return errors.Join(ErrInvalidConfig, errors.New("concurrency must be >= 1"))
	case c.DuplicateEvery < 0:
		return errors.Join(ErrInvalidConfig, errors.New("duplicate-every must be >= 0"))
	}
	return nil
}

// Stats holds run counters.
type Stats struct {
	SubjectsRegistered int           `json:"subjects_registered"`
	CheckInsSubmitted  int64         `json:"checkins_submitted"`
	CheckInsAccepted   int64         `json:"checkins_accepted"`
	CheckInsDuplicate  int64         `json:"checkins_duplicate"`
	CheckInsFailed     int64         `json:"checkins_failed"`
	Alerts             int64         `json:"alerts"`
	Duration           time.Duration `json:"duration"`
}

// Report is the outcome of a run.
type Report struct {
	Stats  Stats         `json:"stats"`
	Roster RosterSummary `json:"roster"`
	// Problems lists roster checks that failed; empty means the run verified.
	Problems []string `json:"problems"`
}
