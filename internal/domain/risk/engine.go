// Package risk combines a check-in's raw signals with the classifier's verdict
// into a bounded burnout score, a recommendation and an alert flag.
//
// The engine is a declarative table of independent rules and a pure reducer:
// matched points are summed, then clamped to [0,100]. It holds no mutable state
// and performs no I/O, so a single Engine may be shared across goroutines.
package risk

import (
	"math"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// Score bounds and tier thresholds.
const (
	MinScore          = 0
	MaxScore          = 100
	CriticalThreshold = 70
	ModerateThreshold = 40
)

// Recommendation texts, one per tier.
const (
	RecommendationCritical = "Critical burnout risk. Immediate rest and academic counseling recommended."
	RecommendationModerate = "Moderate burnout risk. Improve sleep and reduce workload."
	RecommendationStable   = "Stable condition. Maintain healthy routine."
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRules replaces the scoring table. Nil or empty tables are ignored.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		if len(rules) > 0 {
			e.rules = make([]Rule, len(rules))
			copy(e.rules, rules)
		}
	}
}

// Engine evaluates the scoring table.
type Engine struct {
	rules []Rule
}

// New creates an Engine using the built-in table unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Assess scores features with the default table.
func Assess(features model.FeatureVector, out model.ClassifierOutput) (model.Assessment, error) {
	return defaultEngine.Assess(features, out)
}

// Assess validates both inputs, then scores them. Validation errors are
// returned as-is (*model.InvalidFeatureError or
// *model.InvalidClassifierOutputError) and no rule is evaluated.
func (e *Engine) Assess(features model.FeatureVector, out model.ClassifierOutput) (model.Assessment, error) {
	if err := features.Validate(); err != nil {
		return model.Assessment{}, err
	}
	if err := out.Validate(); err != nil {
		return model.Assessment{}, err
	}

	raw, matched := e.sum(features, out)
	score := Clamp(raw)

	return model.Assessment{
		PredictedLabel: out.Label,
		Confidence:     out.Confidence,
		BurnoutRisk:    score,
		Recommendation: Recommend(score),
		Alert:          ShouldAlert(score, out.Label),
		MatchedRules:   matched,
	}, nil
}

// sum evaluates every rule exactly once.
func (e *Engine) sum(features model.FeatureVector, out model.ClassifierOutput) (float64, []string) {
	var total float64
	matched := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		if r.When(features, out) {
			total += r.Points
			matched = append(matched, r.Name)
		}
	}
	return total, matched
}

// Clamp bounds a raw point total to [MinScore, MaxScore].
func Clamp(raw float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, raw))
}

// Recommend maps a clamped score to exactly one recommendation.
func Recommend(score float64) string {
	switch {
	case score > CriticalThreshold:
		return RecommendationCritical
	case score > ModerateThreshold:
		return RecommendationModerate
	default:
		return RecommendationStable
	}
}

// ShouldAlert flags a subject for counselor attention. The score path and the
// classifier path are independent; either one is sufficient, so a High label
// alerts even when the recommendation is only Moderate or Stable.
func ShouldAlert(score float64, label model.RiskLevel) bool {
	return score > CriticalThreshold || label == model.LevelHigh
}
