package classifier_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/classifier"
	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func zeroWeights() [][]float64 {
	return [][]float64{make([]float64, 6), make([]float64, 6), make([]float64, 6)}
}

func TestLogisticClassifier(t *testing.T) {
	Convey("Given a classifier with intercepts only", t, func() {
		c, err := classifier.NewLogistic(classifier.Coefficients{
			Labels:     []model.RiskLevel{model.LevelLow, model.LevelModerate, model.LevelHigh},
			Intercepts: []float64{0, 0, math.Log(2)},
			Weights:    zeroWeights(),
		})
		So(err, ShouldBeNil)

		Convey("When classifying any check-in", func() {
			out, err := c.Classify(context.Background(), model.FeatureVector{MoodLevel: 5})

			Convey("Then the doubled label should win with 50% confidence", func() {
				So(err, ShouldBeNil)
				So(out.Label, ShouldEqual, model.LevelHigh)
				So(out.Confidence, ShouldEqual, 50)
			})

			Convey("And probabilities should sum to one", func() {
				var sum float64
				for _, p := range c.Probabilities(model.FeatureVector{}) {
					sum += p
				}
				So(sum, ShouldAlmostEqual, 1, 1e-12)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := c.Classify(ctx, model.FeatureVector{})

			Convey("Then it should return the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given weights on sleep hours", t, func() {
		w := zeroWeights()
		w[0][1] = 1  // Low grows with sleep
		w[2][1] = -1 // High shrinks with sleep
		c, err := classifier.NewLogistic(classifier.Coefficients{
			Labels:     []model.RiskLevel{model.LevelLow, model.LevelModerate, model.LevelHigh},
			Intercepts: []float64{-7, 0, 7},
			Weights:    w,
		})
		So(err, ShouldBeNil)

		Convey("Then short sleep should be High and long sleep Low", func() {
			short, _ := c.Classify(context.Background(), model.FeatureVector{SleepHours: 3})
			long, _ := c.Classify(context.Background(), model.FeatureVector{SleepHours: 11})
			So(short.Label, ShouldEqual, model.LevelHigh)
			So(long.Label, ShouldEqual, model.LevelLow)
			So(short.Confidence, ShouldBeBetweenOrEqual, 0, 100)
		})

		Convey("And huge inputs should not overflow", func() {
			out, err := c.Classify(context.Background(), model.FeatureVector{SleepHours: 1e6})
			So(err, ShouldBeNil)
			So(out.Label, ShouldEqual, model.LevelLow)
			So(out.Confidence, ShouldEqual, 100)
		})
	})

	Convey("Given malformed coefficients", t, func() {
		cases := map[string]classifier.Coefficients{
			"two labels": {
				Labels:     []model.RiskLevel{model.LevelLow, model.LevelHigh},
				Intercepts: []float64{0, 0},
				Weights:    zeroWeights()[:2],
			},
			"unknown label": {
				Labels:     []model.RiskLevel{model.LevelLow, "Medium", model.LevelHigh},
				Intercepts: []float64{0, 0, 0},
				Weights:    zeroWeights(),
			},
			"repeated label": {
				Labels:     []model.RiskLevel{model.LevelLow, model.LevelLow, model.LevelHigh},
				Intercepts: []float64{0, 0, 0},
				Weights:    zeroWeights(),
			},
			"short weight row": {
				Labels:     []model.RiskLevel{model.LevelLow, model.LevelModerate, model.LevelHigh},
				Intercepts: []float64{0, 0, 0},
				Weights:    [][]float64{{1}, make([]float64, 6), make([]float64, 6)},
			},
			"missing intercept": {
				Labels:     []model.RiskLevel{model.LevelLow, model.LevelModerate, model.LevelHigh},
				Intercepts: []float64{0, 0},
				Weights:    zeroWeights(),
			},
		}
		for name, coef := range cases {
			Convey("When building with "+name, func() {
				_, err := classifier.NewLogistic(coef)
				So(errors.Is(err, classifier.ErrInvalidCoefficients), ShouldBeTrue)
			})
		}
	})
}

func TestStatic(t *testing.T) {
	Convey("Given a static classifier", t, func() {
		want := model.ClassifierOutput{Label: model.LevelModerate, Confidence: 61.5}

		Convey("Then it should return its fixed output", func() {
			out, err := classifier.Static{Output: want}.Classify(context.Background(), model.FeatureVector{})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, want)
		})

		Convey("Then a configured error should be returned", func() {
			boom := errors.New("model unavailable")
			_, err := classifier.Static{Err: boom}.Classify(context.Background(), model.FeatureVector{})
			So(err, ShouldEqual, boom)
		})

		Convey("Then Func should adapt a plain function", func() {
			f := classifier.Func(func(context.Context, model.FeatureVector) (model.ClassifierOutput, error) {
				return want, nil
			})
			out, err := f.Classify(context.Background(), model.FeatureVector{})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, want)
		})
	})
}
