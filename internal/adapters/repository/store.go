// Package repository persists subjects and their append-only assessment
// history. A subject's latest record is always derived from the history by
// newest created_at; no separate current-state field is kept.
package repository

import (
	"context"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// SubjectLatest pairs a subject with its newest record, nil when it has none.
type SubjectLatest struct {
	Subject model.Subject
	Latest  *model.AssessmentRecord
}

// Store provides read/append access to subjects and assessment history.
type Store interface {
	// AddSubject registers a subject. Returns ErrDuplicate if the id exists.
	AddSubject(ctx context.Context, s model.Subject) error

	// Subject returns a subject by id, or ErrNotFound.
	Subject(ctx context.Context, id string) (model.Subject, error)

	// Append stores a new record. Returns ErrNotFound if the subject is
	// unknown and ErrDuplicate if the record id exists.
	Append(ctx context.Context, rec model.AssessmentRecord) error

	// Latest returns the subject's newest record, or ErrNotFound when the
	// subject has none. Equal timestamps resolve to the later append.
	Latest(ctx context.Context, subjectID string) (model.AssessmentRecord, error)

	// History returns up to limit records newest first; limit <= 0 means all.
	History(ctx context.Context, subjectID string, limit int) ([]model.AssessmentRecord, error)

	// LatestBySubject returns every subject in registration order with its
	// newest record, read as one snapshot.
	LatestBySubject(ctx context.Context) ([]SubjectLatest, error)

	// Count returns the number of registered subjects.
	Count(ctx context.Context) (int, error)
}
