package config_test

import (
	"testing"

	"github.com/JayantA-10/AI-Stress-System/internal/config"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/classifier"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.DedupeBackend, convey.ShouldEqual, config.DedupeMemory)
			convey.So(cfg.Notifier, convey.ShouldEqual, config.NotifierLog)
			convey.So(cfg.AlertQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.MaxHistoryLimit, convey.ShouldEqual, 100)
			convey.So(cfg.DedupeTTL().Hours(), convey.ShouldEqual, 24)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the default classifier separates the reference cases", func() {
			lc, err := classifier.NewLogistic(cfg.Classifier.Coefficients())
			convey.So(err, convey.ShouldBeNil)

			stressed := model.FeatureVector{StudyHours: 8, SleepHours: 5, MoodLevel: 3, AssignmentPressure: 9, StudyConsistency: 3, PerformanceTrend: model.TrendDeclining}
			rested := model.FeatureVector{StudyHours: 4, SleepHours: 8, MoodLevel: 8, AssignmentPressure: 4, StudyConsistency: 8, PerformanceTrend: model.TrendImproving}

			convey.So(lc.Labels(), convey.ShouldResemble, []model.RiskLevel{model.LevelLow, model.LevelModerate, model.LevelHigh})

			out, err := lc.Classify(t.Context(), stressed)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.Label, convey.ShouldEqual, model.LevelHigh)
			convey.So(out.Confidence, convey.ShouldBeGreaterThan, 80)

			out, err = lc.Classify(t.Context(), rested)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.Label, convey.ShouldEqual, model.LevelLow)
		})
	})
}
