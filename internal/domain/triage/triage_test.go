package triage_test

import (
	"encoding/json"
	"testing"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/triage"
	. "github.com/smartystreets/goconvey/convey"
)

func record(label model.RiskLevel, alert bool) *model.AssessmentRecord {
	return &model.AssessmentRecord{
		Assessment: model.Assessment{PredictedLabel: label, Alert: alert},
	}
}

func ids(r triage.Roster) []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.SubjectID
	}
	return out
}

func TestRank(t *testing.T) {
	Convey("Given three subjects labelled Moderate, High, Low", t, func() {
		in := []triage.Subject{
			{SubjectID: "moderate", Latest: record(model.LevelModerate, false)},
			{SubjectID: "high", Latest: record(model.LevelHigh, true)},
			{SubjectID: "low", Latest: record(model.LevelLow, false)},
		}

		Convey("When ranking", func() {
			r := triage.Rank(in)

			Convey("Then High should come first, then Moderate, then Low", func() {
				So(ids(r), ShouldResemble, []string{"high", "moderate", "low"})
				So(r.HighRiskCount, ShouldEqual, 1)
				So(r.AlertCount, ShouldEqual, 1)
				So(r.Total, ShouldEqual, 3)
			})

			Convey("And the input slice should be left untouched", func() {
				So(in[0].SubjectID, ShouldEqual, "moderate")
			})
		})
	})

	Convey("Given subjects sharing tiers and some without records", t, func() {
		in := []triage.Subject{
			{SubjectID: "none-1"},
			{SubjectID: "low-1", Latest: record(model.LevelLow, false)},
			{SubjectID: "high-1", Latest: record(model.LevelHigh, true)},
			{SubjectID: "mod-1", Latest: record(model.LevelModerate, true)},
			{SubjectID: "low-2", Latest: record(model.LevelLow, true)},
			{SubjectID: "high-2", Latest: record(model.LevelHigh, true)},
			{SubjectID: "none-2"},
			{SubjectID: "mod-2", Latest: record(model.LevelModerate, false)},
		}

		Convey("When ranking", func() {
			r := triage.Rank(in)

			Convey("Then equal tiers should keep their input order", func() {
				So(ids(r), ShouldResemble, []string{
					"high-1", "high-2", "mod-1", "mod-2", "low-1", "low-2", "none-1", "none-2",
				})
			})

			Convey("Then subjects without records should count toward neither total", func() {
				So(r.HighRiskCount, ShouldEqual, 2)
				So(r.AlertCount, ShouldEqual, 4)
				So(r.Total, ShouldEqual, 8)
				So(r.Entries[6].Tier, ShouldEqual, triage.TierNone)
				So(r.Entries[6].Latest, ShouldBeNil)
			})

			Convey("Then repeated calls should produce the same order", func() {
				for i := 0; i < 10; i++ {
					So(ids(triage.Rank(in)), ShouldResemble, ids(r))
				}
			})
		})
	})

	Convey("Given an alert on a low-tier subject", t, func() {
		r := triage.Rank([]triage.Subject{{SubjectID: "a", Latest: record(model.LevelLow, true)}})

		Convey("Then it should count as an alert but not as high risk", func() {
			So(r.AlertCount, ShouldEqual, 1)
			So(r.HighRiskCount, ShouldEqual, 0)
		})
	})

	Convey("Given no subjects", t, func() {
		r := triage.Rank(nil)

		Convey("Then the roster should be empty with zero counts", func() {
			So(r.Entries, ShouldBeEmpty)
			So(r.Summary, ShouldResemble, triage.Summary{})
		})
	})
}

func TestTier_JSON(t *testing.T) {
	Convey("Given a ranked entry", t, func() {
		b, err := json.Marshal(triage.Entry{SubjectID: "s1", Tier: triage.TierModerate})

		Convey("Then the tier should encode by name", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"tier":"moderate"`)
			So(triage.Tier(42).String(), ShouldEqual, "unknown")
		})
	})
}
