package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for validation failures. The typed errors below match them
// through errors.Is.
var (
	ErrInvalidFeature          = errors.New("invalid feature")
	ErrInvalidClassifierOutput = errors.New("invalid classifier output")
)

// InvalidFeatureError reports a FeatureVector field outside its domain.
type InvalidFeatureError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("invalid feature %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is matches ErrInvalidFeature.
func (e *InvalidFeatureError) Is(target error) bool {
	return target == ErrInvalidFeature
}

// InvalidClassifierOutputError reports a classifier contract violation.
type InvalidClassifierOutputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidClassifierOutputError) Error() string {
	return fmt.Sprintf("invalid classifier output %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is matches ErrInvalidClassifierOutput.
func (e *InvalidClassifierOutputError) Is(target error) bool {
	return target == ErrInvalidClassifierOutput
}
