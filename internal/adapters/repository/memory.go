package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
)

// MemoryStore is an in-process Store. History slices are only ever appended.
type MemoryStore struct {
	mu       sync.RWMutex
	subjects []model.Subject
	index    map[string]int
	records  map[string][]model.AssessmentRecord
	ids      map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index:   make(map[string]int),
		records: make(map[string][]model.AssessmentRecord),
		ids:     make(map[string]struct{}),
	}
}

// AddSubject implements Store.
func (m *MemoryStore) AddSubject(_ context.Context, s model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[s.ID]; ok {
		return fmt.Errorf("subject %q: %w", s.ID, ErrDuplicate)
	}
	m.index[s.ID] = len(m.subjects)
	m.subjects = append(m.subjects, s)
	return nil
}

// Subject implements Store.
func (m *MemoryStore) Subject(_ context.Context, id string) (model.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return model.Subject{}, fmt.Errorf("subject %q: %w", id, ErrNotFound)
	}
	return m.subjects[i], nil
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, rec model.AssessmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[rec.SubjectID]; !ok {
		return fmt.Errorf("subject %q: %w", rec.SubjectID, ErrNotFound)
	}
	if _, ok := m.ids[rec.ID]; ok {
		return fmt.Errorf("record %q: %w", rec.ID, ErrDuplicate)
	}
	rules := make([]string, len(rec.MatchedRules))
	copy(rules, rec.MatchedRules)
	rec.MatchedRules = rules
	m.ids[rec.ID] = struct{}{}
	m.records[rec.SubjectID] = append(m.records[rec.SubjectID], rec)
	return nil
}

// Latest implements Store.
func (m *MemoryStore) Latest(_ context.Context, subjectID string) (model.AssessmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if latest := m.latestLocked(subjectID); latest != nil {
		return *latest, nil
	}
	return model.AssessmentRecord{}, fmt.Errorf("latest record for %q: %w", subjectID, ErrNotFound)
}

// History implements Store.
func (m *MemoryStore) History(_ context.Context, subjectID string, limit int) ([]model.AssessmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.index[subjectID]; !ok {
		return nil, fmt.Errorf("subject %q: %w", subjectID, ErrNotFound)
	}
	recs := newestFirst(m.records[subjectID])
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// LatestBySubject implements Store.
func (m *MemoryStore) LatestBySubject(_ context.Context) ([]SubjectLatest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SubjectLatest, len(m.subjects))
	for i, s := range m.subjects {
		out[i] = SubjectLatest{Subject: s}
		if latest := m.latestLocked(s.ID); latest != nil {
			rec := *latest
			out[i].Latest = &rec
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subjects), nil
}

// latestLocked scans for the max created_at; on ties the later append wins.
func (m *MemoryStore) latestLocked(subjectID string) *model.AssessmentRecord {
	recs := m.records[subjectID]
	var latest *model.AssessmentRecord
	for i := range recs {
		if latest == nil || !recs[i].CreatedAt.Before(latest.CreatedAt) {
			latest = &recs[i]
		}
	}
	return latest
}

// newestFirst returns a copy ordered by created_at desc, later appends first
// on ties.
func newestFirst(recs []model.AssessmentRecord) []model.AssessmentRecord {
	out := make([]model.AssessmentRecord, len(recs))
	for i := range recs {
		out[len(recs)-1-i] = recs[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
