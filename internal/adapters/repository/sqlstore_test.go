package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLStore(db, DialectPostgres)
	require.NoError(t, err)
	return s, mock
}

func TestNewSQLStoreRejectsUnknownDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLStore(db, Dialect("oracle"))
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	lite := &SQLStore{dialect: DialectSQLite}

	q := "SELECT 1 FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b = $2", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestPostgresAddSubject(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("inserts new subject", func(t *testing.T) {
		s, mock := newPostgresMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM subjects WHERE id = $1`)).
			WithArgs("s-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subjects (id, display_name, created_at) VALUES ($1, $2, $3)`)).
			WithArgs("s-1", "Ada", at.UnixNano()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, s.AddSubject(ctx, model.Subject{ID: "s-1", DisplayName: "Ada", CreatedAt: at}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate rolls back", func(t *testing.T) {
		s, mock := newPostgresMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM subjects WHERE id = $1`)).
			WithArgs("s-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
		mock.ExpectRollback()

		err := s.AddSubject(ctx, model.Subject{ID: "s-1", DisplayName: "Ada", CreatedAt: at})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAppend(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := model.AssessmentRecord{
		ID:        "r-1",
		SubjectID: "s-1",
		Features: model.FeatureVector{
			StudyHours: 8, SleepHours: 5, MoodLevel: 3,
			AssignmentPressure: 9, StudyConsistency: 3, PerformanceTrend: model.TrendDeclining,
		},
		Assessment: model.Assessment{
			PredictedLabel: model.LevelHigh, Confidence: 85, BurnoutRisk: 100,
			Recommendation: "Critical", Alert: true,
			MatchedRules: []string{"sleep_deprivation", "assignment_pressure"},
		},
		CreatedAt: at,
	}

	t.Run("unknown subject", func(t *testing.T) {
		s, mock := newPostgresMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM subjects WHERE id = $1`)).
			WithArgs("s-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}))
		mock.ExpectRollback()

		assert.ErrorIs(t, s.Append(ctx, rec), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("writes the full record", func(t *testing.T) {
		s, mock := newPostgresMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM subjects WHERE id = $1`)).
			WithArgs("s-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM assessment_records WHERE id = $1`)).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}))
		mock.ExpectExec(`INSERT INTO assessment_records`).
			WithArgs("r-1", "s-1", 8.0, 5.0, 3, 9, 3, -1,
				"High", 85.0, 100.0, "Critical", true,
				"sleep_deprivation,assignment_pressure", at.UnixNano()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Append(ctx, rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure is wrapped", func(t *testing.T) {
		s, mock := newPostgresMock(t)
		boom := errors.New("connection reset")
		mock.ExpectBegin().WillReturnError(boom)

		err := s.Append(ctx, rec)
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresSubjectNotFound(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, display_name, created_at FROM subjects WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Subject(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCount(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM subjects`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "migrate.db")

	s, err := OpenSQL(ctx, DialectSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, s.Close())

	reopened, err := OpenSQL(ctx, DialectSQLite, dsn)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteWithoutMigrateLeavesSchemaAlone(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "bare.db")

	s, err := OpenSQL(ctx, DialectSQLite, dsn, WithoutMigrate())
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&n))
	assert.Equal(t, 0, n)

	_, err = s.LatestBySubject(ctx)
	assert.Error(t, err)
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (x INT);\n", extractUp(content))
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}
