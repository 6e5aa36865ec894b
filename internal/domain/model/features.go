// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
)

// FeatureCount is the length of the classifier input vector.
const FeatureCount = 6

// Bounds for the 1-10 self-reported scales.
const (
	MinScale = 1
	MaxScale = 10
)

// PerformanceTrend is the self-reported direction of academic performance.
type PerformanceTrend int

// Known performance trends.
const (
	TrendDeclining PerformanceTrend = -1
	TrendStable    PerformanceTrend = 0
	TrendImproving PerformanceTrend = 1
)

// Valid reports whether t is one of the three known trends.
func (t PerformanceTrend) Valid() bool {
	return t == TrendDeclining || t == TrendStable || t == TrendImproving
}

// FeatureVector is one daily wellbeing check-in. It is the input shared by the
// classifier and the rule engine.
type FeatureVector struct {
	StudyHours         float64          `json:"study_hours"`
	SleepHours         float64          `json:"sleep_hours"`
	MoodLevel          int              `json:"mood_level"`
	AssignmentPressure int              `json:"assignment_pressure"`
	StudyConsistency   int              `json:"study_consistency"`
	PerformanceTrend   PerformanceTrend `json:"performance_trend"`
}

// Validate checks every field against its domain and returns the first
// violation as an *InvalidFeatureError.
func (f FeatureVector) Validate() error {
	if err := checkHours("study_hours", f.StudyHours); err != nil {
		return err
	}
	if err := checkHours("sleep_hours", f.SleepHours); err != nil {
		return err
	}
	if err := checkScale("mood_level", f.MoodLevel); err != nil {
		return err
	}
	if err := checkScale("assignment_pressure", f.AssignmentPressure); err != nil {
		return err
	}
	if err := checkScale("study_consistency", f.StudyConsistency); err != nil {
		return err
	}
	if !f.PerformanceTrend.Valid() {
		return &InvalidFeatureError{
			Field:  "performance_trend",
			Value:  f.PerformanceTrend,
			Reason: "must be one of -1, 0, 1",
		}
	}
	return nil
}

// Vector returns the fields in classifier order: study, sleep, mood,
// pressure, consistency, trend.
func (f FeatureVector) Vector() [FeatureCount]float64 {
	return [FeatureCount]float64{
		f.StudyHours,
		f.SleepHours,
		float64(f.MoodLevel),
		float64(f.AssignmentPressure),
		float64(f.StudyConsistency),
		float64(f.PerformanceTrend),
	}
}

func checkHours(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidFeatureError{Field: field, Value: v, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &InvalidFeatureError{Field: field, Value: v, Reason: "must be >= 0"}
	}
	return nil
}

func checkScale(field string, v int) error {
	if v < MinScale || v > MaxScale {
		return &InvalidFeatureError{
			Field:  field,
			Value:  v,
			Reason: fmt.Sprintf("must be within %d-%d", MinScale, MaxScale),
		}
	}
	return nil
}
