package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"

	// SQL drivers: pure Go SQLite (no CGO) and Postgres.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects driver-specific SQL.
type Dialect string

// Supported dialects. Values double as database/sql driver names.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Connection pool constants.
const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

const recordColumns = `r.id, r.subject_id, r.study_hours, r.sleep_hours, r.mood_level,
	r.assignment_pressure, r.study_consistency, r.performance_trend,
	r.predicted_label, r.confidence, r.burnout_risk, r.recommendation,
	r.alert, r.matched_rules, r.created_at`

// SQLStore is a Store over database/sql. Timestamps are stored as Unix
// nanoseconds; the seq column breaks created_at ties by insertion order.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  logger.Logger
	// skipMigrate leaves the schema untouched on open.
	skipMigrate bool
}

// SQLOption applies a configuration option to the SQLStore.
type SQLOption func(*SQLStore)

// WithStoreLogger sets the logger used for migrations.
func WithStoreLogger(l logger.Logger) SQLOption {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithoutMigrate makes OpenSQL use the schema as found. Readers of an
// existing database use it so they never create or alter tables.
func WithoutMigrate() SQLOption {
	return func(s *SQLStore) {
		s.skipMigrate = true
	}
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB, dialect Dialect, opts ...SQLOption) (*SQLStore, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	s := &SQLStore{db: db, dialect: dialect, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OpenSQL opens a database for dialect, tunes the pool and migrates it
// unless WithoutMigrate is given.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, opts ...SQLOption) (*SQLStore, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	} else {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	s, err := NewSQLStore(db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if s.skipMigrate {
		return s, nil
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddSubject implements Store.
func (s *SQLStore) AddSubject(ctx context.Context, subj model.Subject) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.subjectExists(ctx, tx, subj.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("subject %q: %w", subj.ID, ErrDuplicate)
		}
		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO subjects (id, display_name, created_at) VALUES (?, ?, ?)`),
			subj.ID, subj.DisplayName, subj.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}
		return nil
	})
}

// Subject implements Store.
func (s *SQLStore) Subject(ctx context.Context, id string) (model.Subject, error) {
	var (
		subj    model.Subject
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, display_name, created_at FROM subjects WHERE id = ?`), id,
	).Scan(&subj.ID, &subj.DisplayName, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subject{}, fmt.Errorf("subject %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Subject{}, fmt.Errorf("query subject: %w", err)
	}
	subj.CreatedAt = fromUnixNano(created)
	return subj, nil
}

// Append implements Store.
func (s *SQLStore) Append(ctx context.Context, rec model.AssessmentRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.subjectExists(ctx, tx, rec.SubjectID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("subject %q: %w", rec.SubjectID, ErrNotFound)
		}

		var dup int
		err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM assessment_records WHERE id = ?`), rec.ID).Scan(&dup)
		if err == nil {
			return fmt.Errorf("record %q: %w", rec.ID, ErrDuplicate)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query record: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO assessment_records (
			id, subject_id, study_hours, sleep_hours, mood_level, assignment_pressure,
			study_consistency, performance_trend, predicted_label, confidence,
			burnout_risk, recommendation, alert, matched_rules, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			rec.ID, rec.SubjectID,
			rec.Features.StudyHours, rec.Features.SleepHours, rec.Features.MoodLevel,
			rec.Features.AssignmentPressure, rec.Features.StudyConsistency, int(rec.Features.PerformanceTrend),
			string(rec.PredictedLabel), rec.Confidence, rec.BurnoutRisk, rec.Recommendation,
			rec.Alert, strings.Join(rec.MatchedRules, ","), rec.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		return nil
	})
}

// Latest implements Store.
func (s *SQLStore) Latest(ctx context.Context, subjectID string) (model.AssessmentRecord, error) {
	recs, err := s.History(ctx, subjectID, 1)
	if err != nil {
		return model.AssessmentRecord{}, err
	}
	if len(recs) == 0 {
		return model.AssessmentRecord{}, fmt.Errorf("latest record for %q: %w", subjectID, ErrNotFound)
	}
	return recs[0], nil
}

// History implements Store.
func (s *SQLStore) History(ctx context.Context, subjectID string, limit int) ([]model.AssessmentRecord, error) {
	if _, err := s.Subject(ctx, subjectID); err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM assessment_records r
		WHERE r.subject_id = ? ORDER BY r.created_at DESC, r.seq DESC`
	args := []any{subjectID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.AssessmentRecord
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, row.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// LatestBySubject implements Store. It is a single statement, so every
// subject is read from the same snapshot.
func (s *SQLStore) LatestBySubject(ctx context.Context) ([]SubjectLatest, error) {
	query := `SELECT s.id, s.display_name, s.created_at, ` + recordColumns + `
		FROM subjects s
		LEFT JOIN assessment_records r ON r.seq = (
			SELECT r2.seq FROM assessment_records r2
			WHERE r2.subject_id = s.id
			ORDER BY r2.created_at DESC, r2.seq DESC
			LIMIT 1
		)
		ORDER BY s.seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var out []SubjectLatest
	for rows.Next() {
		var (
			subj    model.Subject
			created int64
			row     nullRecordRow
		)
		dest := append([]any{&subj.ID, &subj.DisplayName, &created}, row.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		subj.CreatedAt = fromUnixNano(created)
		out = append(out, SubjectLatest{Subject: subj, Latest: row.record()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return n, nil
}

func (s *SQLStore) subjectExists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM subjects WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query subject: %w", err)
	}
	return true, nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// recordRow is the scan target for a full record.
type recordRow struct {
	rec     model.AssessmentRecord
	trend   int
	label   string
	rules   string
	created int64
}

func (r *recordRow) dest() []any {
	return []any{
		&r.rec.ID, &r.rec.SubjectID,
		&r.rec.Features.StudyHours, &r.rec.Features.SleepHours, &r.rec.Features.MoodLevel,
		&r.rec.Features.AssignmentPressure, &r.rec.Features.StudyConsistency, &r.trend,
		&r.label, &r.rec.Confidence, &r.rec.BurnoutRisk, &r.rec.Recommendation,
		&r.rec.Alert, &r.rules, &r.created,
	}
}

func (r *recordRow) record() model.AssessmentRecord {
	rec := r.rec
	rec.Features.PerformanceTrend = model.PerformanceTrend(r.trend)
	rec.PredictedLabel = model.RiskLevel(r.label)
	rec.MatchedRules = splitRules(r.rules)
	rec.CreatedAt = fromUnixNano(r.created)
	return rec
}

// nullRecordRow scans the LEFT JOIN side, which is all NULL for subjects
// without records.
type nullRecordRow struct {
	id, subjectID, label, recommendation, rules sql.NullString
	study, sleep, confidence, burnout           sql.NullFloat64
	mood, pressure, consistency, trend, created sql.NullInt64
	alert                                       sql.NullBool
}

func (r *nullRecordRow) dest() []any {
	return []any{
		&r.id, &r.subjectID, &r.study, &r.sleep, &r.mood,
		&r.pressure, &r.consistency, &r.trend,
		&r.label, &r.confidence, &r.burnout, &r.recommendation,
		&r.alert, &r.rules, &r.created,
	}
}

func (r *nullRecordRow) record() *model.AssessmentRecord {
	if !r.id.Valid {
		return nil
	}
	return &model.AssessmentRecord{
		ID:        r.id.String,
		SubjectID: r.subjectID.String,
		Features: model.FeatureVector{
			StudyHours:         r.study.Float64,
			SleepHours:         r.sleep.Float64,
			MoodLevel:          int(r.mood.Int64),
			AssignmentPressure: int(r.pressure.Int64),
			StudyConsistency:   int(r.consistency.Int64),
			PerformanceTrend:   model.PerformanceTrend(r.trend.Int64),
		},
		Assessment: model.Assessment{
			PredictedLabel: model.RiskLevel(r.label.String),
			Confidence:     r.confidence.Float64,
			BurnoutRisk:    r.burnout.Float64,
			Recommendation: r.recommendation.String,
			Alert:          r.alert.Bool,
			MatchedRules:   splitRules(r.rules.String),
		},
		CreatedAt: fromUnixNano(r.created.Int64),
	}
}

func splitRules(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
