package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// Coefficients parameterize a multinomial logistic regression: one intercept
// and one weight row per label, each row in FeatureVector.Vector order.
type Coefficients struct {
	Labels     []model.RiskLevel
	Intercepts []float64
	Weights    [][]float64
}

// Validate checks shape and that the labels are exactly Low, Moderate, High.
func (c Coefficients) Validate() error {
	n := len(c.Labels)
	if n != len(model.Levels) {
		return fmt.Errorf("%w: want %d labels, got %d", ErrInvalidCoefficients, len(model.Levels), n)
	}
	seen := make(map[model.RiskLevel]bool, n)
	for _, l := range c.Labels {
		if !l.Valid() || seen[l] {
			return fmt.Errorf("%w: bad or repeated label %q", ErrInvalidCoefficients, l)
		}
		seen[l] = true
	}
	if len(c.Intercepts) != n || len(c.Weights) != n {
		return fmt.Errorf("%w: need %d intercepts and weight rows", ErrInvalidCoefficients, n)
	}
	for i, row := range c.Weights {
		if len(row) != model.FeatureCount {
			return fmt.Errorf("%w: weight row %d has %d entries, want %d",
				ErrInvalidCoefficients, i, len(row), model.FeatureCount)
		}
	}
	return nil
}

// LogisticClassifier scores each label linearly, applies softmax and reports
// the most probable label. Confidence is that probability as a percentage
// rounded to two decimals.
type LogisticClassifier struct {
	labels     []model.RiskLevel
	intercepts []float64
	weights    [][model.FeatureCount]float64
}

// NewLogistic builds a classifier from validated coefficients.
func NewLogistic(c Coefficients) (*LogisticClassifier, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	lc := &LogisticClassifier{
		labels:     append([]model.RiskLevel(nil), c.Labels...),
		intercepts: append([]float64(nil), c.Intercepts...),
		weights:    make([][model.FeatureCount]float64, len(c.Weights)),
	}
	for i, row := range c.Weights {
		copy(lc.weights[i][:], row)
	}
	return lc, nil
}

// Classify runs inference on features.
func (c *LogisticClassifier) Classify(ctx context.Context, features model.FeatureVector) (model.ClassifierOutput, error) {
	if err := ctx.Err(); err != nil {
		return model.ClassifierOutput{}, fmt.Errorf("context cancelled: %w", err)
	}
	probs := c.Probabilities(features)

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return model.ClassifierOutput{
		Label:      c.labels[best],
		Confidence: math.Round(probs[best]*10000) / 100,
	}, nil
}

// Probabilities returns the softmax distribution in label order.
func (c *LogisticClassifier) Probabilities(features model.FeatureVector) []float64 {
	x := features.Vector()
	scores := make([]float64, len(c.labels))
	maxScore := math.Inf(-1)
	for i := range c.labels {
		z := c.intercepts[i]
		for j, w := range c.weights[i] {
			z += w * x[j]
		}
		scores[i] = z
		if z > maxScore {
			maxScore = z
		}
	}

	var sum float64
	for i, z := range scores {
		scores[i] = math.Exp(z - maxScore)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}

// Labels returns the label order used by Probabilities.
func (c *LogisticClassifier) Labels() []model.RiskLevel {
	return append([]model.RiskLevel(nil), c.labels...)
}
