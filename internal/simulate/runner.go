package simulate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
)

// tierOrder ranks roster tiers; the roster must be non-decreasing in it.
var tierOrder = map[string]int{"high": 0, "moderate": 1, "low": 2, "none": 3}

// Run executes a full simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg Config, l logger.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if l == nil {
		l = logger.Nop()
	}
	start := time.Now()
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	l.Info(ctx, "starting simulation",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("subjects", cfg.Subjects),
		logger.Int("checkins_per_subject", cfg.CheckIns),
		logger.Int("concurrency", cfg.Concurrency),
	)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Register subjects
	gen := NewGenerator(cfg.Seed)
	subjects := gen.SubjectIDs(cfg.Subjects)
	for _, id := range subjects {
		if err := client.RegisterSubject(ctx, id); err != nil {
			return Report{}, err
		}
	}

	// Step 3: Submit check-ins concurrently
	checkins := gen.CheckIns(subjects, cfg.CheckIns)
	if cfg.DuplicateEvery > 0 {
		checkins = withReplays(checkins, cfg.DuplicateEvery)
	}
	stats := submitAll(ctx, client, checkins, cfg.Concurrency)
	stats.SubjectsRegistered = len(subjects)

	l.Info(ctx, "check-ins submitted",
		logger.Int("accepted", int(stats.CheckInsAccepted)),
		logger.Int("duplicate", int(stats.CheckInsDuplicate)),
		logger.Int("failed", int(stats.CheckInsFailed)),
	)

	// Step 4: Verify the roster
	roster, err := client.Roster(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("roster retrieval failed: %w", err)
	}
	stats.Duration = time.Since(start)

	report := Report{Stats: stats, Roster: roster.Summary, Problems: Verify(roster, subjects)}
	if len(report.Problems) > 0 {
		l.Warn(ctx, "roster verification failed", logger.Any("problems", report.Problems))
	}
	return report, nil
}

// submitAll posts check-ins through a pool of workers.
func submitAll(ctx context.Context, client *Client, checkins []CheckIn, workers int) Stats {
	var (
		stats Stats
		wg    sync.WaitGroup
	)
	jobs := make(chan CheckIn, workers*2)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for in := range jobs {
				outcome, alert := client.Submit(ctx, in)
				atomic.AddInt64(&stats.CheckInsSubmitted, 1)
				switch outcome {
				case OutcomeAccepted:
					atomic.AddInt64(&stats.CheckInsAccepted, 1)
				case OutcomeDuplicate:
					atomic.AddInt64(&stats.CheckInsDuplicate, 1)
				default:
					atomic.AddInt64(&stats.CheckInsFailed, 1)
				}
				if alert {
					atomic.AddInt64(&stats.Alerts, 1)
				}
			}
		}()
	}

feed:
	for _, in := range checkins {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- in:
		}
	}
	close(jobs)
	wg.Wait()
	return stats
}

// withReplays appends a copy of every nth check-in so the service sees
// repeated submission ids.
func withReplays(checkins []CheckIn, n int) []CheckIn {
	out := append([]CheckIn(nil), checkins...)
	for i := n - 1; i < len(checkins); i += n {
		out = append(out, checkins[i])
	}
	return out
}

// Verify checks that every subject is on the roster once and that entries
// are ordered by tier.
func Verify(r Roster, subjects []string) []string {
	var problems []string
	seen := make(map[string]int, len(r.Entries))
	for _, e := range r.Entries {
		seen[e.SubjectID]++
	}
	for _, id := range subjects {
		switch seen[id] {
		case 1:
		case 0:
			problems = append(problems, fmt.Sprintf("subject %s missing from roster", id))
		default:
			problems = append(problems, fmt.Sprintf("subject %s listed %d times", id, seen[id]))
		}
	}
	for i := 1; i < len(r.Entries); i++ {
		prev, cur := r.Entries[i-1].Tier, r.Entries[i].Tier
		if tierOrder[prev] > tierOrder[cur] {
			problems = append(problems, fmt.Sprintf("entry %d tier %s after %s", i, cur, prev))
		}
	}
	if r.Summary.Total != len(r.Entries) {
		problems = append(problems, fmt.Sprintf("summary total %d != %d entries", r.Summary.Total, len(r.Entries)))
	}
	return problems
}
