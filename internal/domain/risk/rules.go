package risk

import "github.com/JayantA-10/AI-Stress-System/internal/domain/model"

// Rule thresholds.
const (
	shortSleepHours        = 6
	overworkStudyHours     = 6
	lowMoodLevel           = 4
	highPressureLevel      = 8
	lowConsistencyLevel    = 4
	confidentHighThreshold = 80
)

// Rule is one independent boolean trigger in the scoring table.
type Rule struct {
	Name   string
	Points float64
	When   func(f model.FeatureVector, out model.ClassifierOutput) bool
}

// defaultRules is the scoring table. Order only affects MatchedRules.
var defaultRules = []Rule{
	{
		Name:   "sleep_deprivation",
		Points: 20,
		When: func(f model.FeatureVector, _ model.ClassifierOutput) bool {
			return f.SleepHours < shortSleepHours
		},
	},
	{
		Name:   "overwork_low_mood",
		Points: 30,
		When: func(f model.FeatureVector, _ model.ClassifierOutput) bool {
			return f.StudyHours > overworkStudyHours && f.MoodLevel < lowMoodLevel
		},
	},
	{
		Name:   "declining_performance",
		Points: 20,
		When: func(f model.FeatureVector, _ model.ClassifierOutput) bool {
			return f.PerformanceTrend == model.TrendDeclining
		},
	},
	{
		Name:   "assignment_pressure",
		Points: 25,
		When: func(f model.FeatureVector, _ model.ClassifierOutput) bool {
			return f.AssignmentPressure > highPressureLevel
		},
	},
	{
		Name:   "low_consistency",
		Points: 15,
		When: func(f model.FeatureVector, _ model.ClassifierOutput) bool {
			return f.StudyConsistency < lowConsistencyLevel
		},
	},
	{
		Name:   "confident_high_prediction",
		Points: 15,
		When: func(_ model.FeatureVector, out model.ClassifierOutput) bool {
			return out.Label == model.LevelHigh && out.Confidence > confidentHighThreshold
		},
	},
}

// DefaultRules returns a copy of the built-in scoring table.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}
