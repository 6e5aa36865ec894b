package api

import (
	"errors"
	"net/http"

	service "github.com/JayantA-10/AI-Stress-System/internal/app"
	"github.com/JayantA-10/AI-Stress-System/internal/adapters/repository"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrLimitExceeded  = errors.New("limit exceeded")
	ErrSchemaMismatch = errors.New("request does not match schema")
)

// Error tags an error with the handler op and an optional kind. Both the kind
// and the cause stay visible to errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	default:
		return e.Op
	}
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind creates an error of kind for op with no underlying cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidFeature):
		return http.StatusUnprocessableEntity, "invalid_feature"
	case errors.Is(err, model.ErrInvalidClassifierOutput):
		return http.StatusUnprocessableEntity, "invalid_classifier_output"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrSchemaMismatch), errors.Is(err, service.ErrInvalidSubject):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrNotRunning):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
