// Package classifier defines the statistical classifier boundary. The rest of
// the system only depends on the Classifier interface; the logistic model
// here, a remote model, or a fixture can stand behind it.
package classifier

import (
	"context"
	"errors"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// Sentinel kinds for classifier errors.
var (
	ErrInvalidCoefficients = errors.New("invalid classifier coefficients")
)

// Classifier maps a check-in to a risk label and a confidence percentage.
type Classifier interface {
	// Classify runs one inference, honoring ctx for cancellation.
	Classify(ctx context.Context, features model.FeatureVector) (model.ClassifierOutput, error)
}

// Func adapts a function to the Classifier interface.
type Func func(ctx context.Context, features model.FeatureVector) (model.ClassifierOutput, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, features model.FeatureVector) (model.ClassifierOutput, error) {
	return f(ctx, features)
}

// Static always returns the same output. It is meant for tests and fixtures.
type Static struct {
	Output model.ClassifierOutput
	Err    error
}

// Classify returns the configured output or error.
func (s Static) Classify(ctx context.Context, _ model.FeatureVector) (model.ClassifierOutput, error) {
	if err := ctx.Err(); err != nil {
		return model.ClassifierOutput{}, err
	}
	if s.Err != nil {
		return model.ClassifierOutput{}, s.Err
	}
	return s.Output, nil
}
