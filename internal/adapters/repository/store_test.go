package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/repository"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func record(id, subject string, at time.Time, label model.RiskLevel, risk float64) model.AssessmentRecord {
	return model.AssessmentRecord{
		ID:        id,
		SubjectID: subject,
		Features: model.FeatureVector{
			StudyHours:         7.5,
			SleepHours:         5,
			MoodLevel:          3,
			AssignmentPressure: 9,
			StudyConsistency:   3,
			PerformanceTrend:   model.TrendDeclining,
		},
		Assessment: model.Assessment{
			PredictedLabel: label,
			Confidence:     85,
			BurnoutRisk:    risk,
			Recommendation: "Critical Risk: Immediate counselor intervention recommended.",
			Alert:          risk > 70,
			MatchedRules:   []string{"sleep_deprivation", "overwork_low_mood"},
		},
		CreatedAt: at,
	}
}

// storeFactories yields each Store implementation under test.
func storeFactories(t *testing.T) map[string]func() repository.Store {
	return map[string]func() repository.Store{
		"memory": func() repository.Store { return repository.NewMemoryStore() },
		"sqlite": func() repository.Store {
			dsn := filepath.Join(t.TempDir(), fmt.Sprintf("store-%d.db", time.Now().UnixNano()))
			s, err := repository.OpenSQL(context.Background(), repository.DialectSQLite, dsn)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories(t) {
		Convey("Given a "+name+" store", t, func() {
			store := factory()
			So(store.AddSubject(ctx, model.Subject{ID: "s-1", DisplayName: "Ada", CreatedAt: base}), ShouldBeNil)
			So(store.AddSubject(ctx, model.Subject{ID: "s-2", DisplayName: "Ben", CreatedAt: base}), ShouldBeNil)

			Convey("When registering an existing subject", func() {
				err := store.AddSubject(ctx, model.Subject{ID: "s-1", DisplayName: "Again", CreatedAt: base})

				Convey("Then ErrDuplicate is returned", func() {
					So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				})
			})

			Convey("When looking up subjects", func() {
				subj, err := store.Subject(ctx, "s-1")
				So(err, ShouldBeNil)
				So(subj.DisplayName, ShouldEqual, "Ada")
				So(subj.CreatedAt.Equal(base), ShouldBeTrue)

				_, err = store.Subject(ctx, "missing")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})

			Convey("When appending to an unknown subject", func() {
				err := store.Append(ctx, record("r-x", "missing", base, model.LevelLow, 0))
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("When appending a duplicate record id", func() {
				So(store.Append(ctx, record("r-1", "s-1", base, model.LevelLow, 0)), ShouldBeNil)
				err := store.Append(ctx, record("r-1", "s-1", base.Add(time.Minute), model.LevelLow, 0))
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
			})

			Convey("When a subject has no records", func() {
				_, err := store.Latest(ctx, "s-2")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				hist, err := store.History(ctx, "s-2", 0)
				So(err, ShouldBeNil)
				So(hist, ShouldBeEmpty)
			})

			Convey("When a record matched no rules", func() {
				rec := record("r-empty", "s-1", base, model.LevelLow, 0)
				rec.MatchedRules = []string{}
				So(store.Append(ctx, rec), ShouldBeNil)

				Convey("Then reads return an empty, non-nil rule list", func() {
					latest, err := store.Latest(ctx, "s-1")
					So(err, ShouldBeNil)
					So(latest.MatchedRules, ShouldNotBeNil)
					So(latest.MatchedRules, ShouldBeEmpty)
				})
			})

			Convey("When records arrive out of timestamp order", func() {
				So(store.Append(ctx, record("r-1", "s-1", base.Add(2*time.Hour), model.LevelHigh, 95)), ShouldBeNil)
				So(store.Append(ctx, record("r-2", "s-1", base, model.LevelLow, 10)), ShouldBeNil)
				So(store.Append(ctx, record("r-3", "s-1", base.Add(time.Hour), model.LevelModerate, 50)), ShouldBeNil)

				Convey("Then latest is the newest by timestamp", func() {
					latest, err := store.Latest(ctx, "s-1")
					So(err, ShouldBeNil)
					So(latest.ID, ShouldEqual, "r-1")
					So(latest.PredictedLabel, ShouldEqual, model.LevelHigh)
					So(latest.Features.PerformanceTrend, ShouldEqual, model.TrendDeclining)
					So(latest.MatchedRules, ShouldResemble, []string{"sleep_deprivation", "overwork_low_mood"})
					So(latest.Alert, ShouldBeTrue)
					So(latest.CreatedAt.Equal(base.Add(2*time.Hour)), ShouldBeTrue)
				})

				Convey("Then history is newest first and honors the limit", func() {
					hist, err := store.History(ctx, "s-1", 0)
					So(err, ShouldBeNil)
					So(len(hist), ShouldEqual, 3)
					So(hist[0].ID, ShouldEqual, "r-1")
					So(hist[1].ID, ShouldEqual, "r-3")
					So(hist[2].ID, ShouldEqual, "r-2")

					hist, err = store.History(ctx, "s-1", 2)
					So(err, ShouldBeNil)
					So(len(hist), ShouldEqual, 2)
					So(hist[1].ID, ShouldEqual, "r-3")
				})
			})

			Convey("When two records share a timestamp", func() {
				So(store.Append(ctx, record("r-a", "s-1", base, model.LevelLow, 10)), ShouldBeNil)
				So(store.Append(ctx, record("r-b", "s-1", base, model.LevelHigh, 80)), ShouldBeNil)

				Convey("Then the later append is latest", func() {
					latest, err := store.Latest(ctx, "s-1")
					So(err, ShouldBeNil)
					So(latest.ID, ShouldEqual, "r-b")
				})
			})

			Convey("When reading the roster snapshot", func() {
				So(store.AddSubject(ctx, model.Subject{ID: "s-0", DisplayName: "Cy", CreatedAt: base}), ShouldBeNil)
				So(store.Append(ctx, record("r-1", "s-2", base, model.LevelLow, 10)), ShouldBeNil)
				So(store.Append(ctx, record("r-2", "s-2", base.Add(time.Hour), model.LevelModerate, 45)), ShouldBeNil)

				rows, err := store.LatestBySubject(ctx)
				So(err, ShouldBeNil)

				Convey("Then subjects come back in registration order", func() {
					So(len(rows), ShouldEqual, 3)
					So(rows[0].Subject.ID, ShouldEqual, "s-1")
					So(rows[1].Subject.ID, ShouldEqual, "s-2")
					So(rows[2].Subject.ID, ShouldEqual, "s-0")
				})

				Convey("Then only subjects with records carry a latest record", func() {
					So(rows[0].Latest, ShouldBeNil)
					So(rows[1].Latest, ShouldNotBeNil)
					So(rows[1].Latest.ID, ShouldEqual, "r-2")
					So(rows[1].Latest.BurnoutRisk, ShouldEqual, 45)
					So(rows[2].Latest, ShouldBeNil)
				})
			})
		})
	}
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Given a memory store shared by writers and readers", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		So(store.AddSubject(ctx, model.Subject{ID: "s-1", DisplayName: "Ada", CreatedAt: base}), ShouldBeNil)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_ = store.Append(ctx, record(fmt.Sprintf("r-%d", i), "s-1", base.Add(time.Duration(i)*time.Second), model.LevelLow, 5))
			}(i)
			go func() {
				defer wg.Done()
				_, _ = store.LatestBySubject(ctx)
			}()
		}
		wg.Wait()

		Convey("Then every append is retained and latest is the newest", func() {
			hist, err := store.History(ctx, "s-1", 0)
			So(err, ShouldBeNil)
			So(len(hist), ShouldEqual, 50)

			latest, err := store.Latest(ctx, "s-1")
			So(err, ShouldBeNil)
			So(latest.ID, ShouldEqual, "r-49")
		})
	})
}

func TestMemoryStoreCopiesRules(t *testing.T) {
	Convey("Given a record whose rule slice is mutated after append", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		So(store.AddSubject(ctx, model.Subject{ID: "s-1", CreatedAt: base}), ShouldBeNil)

		rec := record("r-1", "s-1", base, model.LevelHigh, 90)
		So(store.Append(ctx, rec), ShouldBeNil)
		rec.MatchedRules[0] = "tampered"

		Convey("Then the stored record is unaffected", func() {
			latest, err := store.Latest(ctx, "s-1")
			So(err, ShouldBeNil)
			So(latest.MatchedRules[0], ShouldEqual, "sleep_deprivation")
		})
	})
}
