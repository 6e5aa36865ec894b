package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotRunning          = errors.New("service not running")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrInvalidSubject      = errors.New("invalid subject")
	ErrNoClassifier        = errors.New("no classifier configured")
)
