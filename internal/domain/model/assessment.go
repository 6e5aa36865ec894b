package model

import (
	"math"
	"time"
)

// RiskLevel is the categorical tier produced by the statistical classifier.
type RiskLevel string

// Known classifier labels.
const (
	LevelLow      RiskLevel = "Low"
	LevelModerate RiskLevel = "Moderate"
	LevelHigh     RiskLevel = "High"
)

// Levels lists the known labels from highest to lowest priority.
var Levels = []RiskLevel{LevelHigh, LevelModerate, LevelLow}

// Valid reports whether l is one of the three known labels.
func (l RiskLevel) Valid() bool {
	return l == LevelLow || l == LevelModerate || l == LevelHigh
}

// ClassifierOutput is the classifier's verdict for one FeatureVector.
type ClassifierOutput struct {
	Label      RiskLevel `json:"label"`
	Confidence float64   `json:"confidence"`
}

// Validate enforces the classifier contract: a known label and a confidence
// percentage within [0,100].
func (o ClassifierOutput) Validate() error {
	if !o.Label.Valid() {
		return &InvalidClassifierOutputError{Field: "label", Value: o.Label, Reason: "unknown label"}
	}
	if math.IsNaN(o.Confidence) || o.Confidence < 0 || o.Confidence > 100 {
		return &InvalidClassifierOutputError{Field: "confidence", Value: o.Confidence, Reason: "must be within 0-100"}
	}
	return nil
}

// Assessment is the rule engine's verdict before it is tied to a subject.
type Assessment struct {
	PredictedLabel RiskLevel `json:"predicted_label"`
	Confidence     float64   `json:"confidence"`
	BurnoutRisk    float64   `json:"burnout_risk"`
	Recommendation string    `json:"recommendation"`
	Alert          bool      `json:"alert"`
	// MatchedRules names the rules that contributed points, in table order.
	MatchedRules []string `json:"matched_rules"`
}

// AssessmentRecord is an Assessment persisted for a subject. Records are
// append-only; a subject's current state is its newest record.
type AssessmentRecord struct {
	ID        string        `json:"id"`
	SubjectID string        `json:"subject_id"`
	Features  FeatureVector `json:"features"`
	Assessment
	CreatedAt time.Time `json:"created_at"`
}

// Subject is a tracked student.
type Subject struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
