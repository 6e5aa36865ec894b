// Package triage orders subjects for the counselor view by the tier of their
// latest assessment.
package triage

import (
	"sort"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// Tier is a subject's priority bucket. Lower values rank first.
type Tier int

// Tiers in priority order.
const (
	TierHigh Tier = iota
	TierModerate
	TierLow
	TierNone
)

var tierNames = map[Tier]string{
	TierHigh:     "high",
	TierModerate: "moderate",
	TierLow:      "low",
	TierNone:     "none",
}

func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TierOf returns the tier for a subject's latest record; nil means no record.
func TierOf(latest *model.AssessmentRecord) Tier {
	if latest == nil {
		return TierNone
	}
	switch latest.PredictedLabel {
	case model.LevelHigh:
		return TierHigh
	case model.LevelModerate:
		return TierModerate
	case model.LevelLow:
		return TierLow
	default:
		return TierNone
	}
}

// Subject pairs a subject with its latest record, or nil when it has none.
type Subject struct {
	SubjectID   string
	DisplayName string
	Latest      *model.AssessmentRecord
}

// Entry is one row of the ranked roster.
type Entry struct {
	SubjectID   string                  `json:"subject_id"`
	DisplayName string                  `json:"display_name,omitempty"`
	Tier        Tier                    `json:"tier"`
	Latest      *model.AssessmentRecord `json:"latest"`
}

// Summary holds the counts shown above the roster.
type Summary struct {
	Total         int `json:"total"`
	HighRiskCount int `json:"high_risk_count"`
	AlertCount    int `json:"alert_count"`
}

// Roster is the ranked view plus its summary.
type Roster struct {
	Entries []Entry `json:"entries"`
	Summary `json:"summary"`
}

// Rank orders subjects High, Moderate, Low, then those without a record.
// Subjects in the same tier keep their input order. Counts are derived from
// the same input; nothing is cached between calls.
func Rank(subjects []Subject) Roster {
	entries := make([]Entry, len(subjects))
	var summary Summary
	for i, s := range subjects {
		entries[i] = Entry{
			SubjectID:   s.SubjectID,
			DisplayName: s.DisplayName,
			Tier:        TierOf(s.Latest),
			Latest:      s.Latest,
		}
		if s.Latest == nil {
			continue
		}
		if s.Latest.PredictedLabel == model.LevelHigh {
			summary.HighRiskCount++
		}
		if s.Latest.Alert {
			summary.AlertCount++
		}
	}
	summary.Total = len(entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Tier < entries[j].Tier
	})

	return Roster{Entries: entries, Summary: summary}
}
