package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/config"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
	"github.com/JayantA-10/AI-Stress-System/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		_ = os.Setenv("WELLCHECK_ALERT_WORKER_COUNT", "1")
		_ = os.Setenv("WELLCHECK_MAX_HISTORY_LIMIT", "3")
		defer func() {
			_ = os.Unsetenv("WELLCHECK_ALERT_WORKER_COUNT")
			_ = os.Unsetenv("WELLCHECK_MAX_HISTORY_LIMIT")
		}()

		cfg, err := config.Load()
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.MaxHistoryLimit, convey.ShouldEqual, 3)

		convey.Convey("When the service and mux are built", func() {
			ctx := context.Background()
			svc, err := newService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			srv := httptest.NewServer(newMux(ctx, svc, cfg, logger.Nop()))
			defer srv.Close()

			convey.Convey("Then the API and docs routes are served", func() {
				for _, path := range []string{"/healthz", "/triage", "/stats", "/openapi.yaml", "/api-docs", "/metrics"} {
					resp, err := http.Get(srv.URL + path)
					convey.So(err, convey.ShouldBeNil)
					_ = resp.Body.Close()
					convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("And the configured history cap is enforced", func() {
				resp, err := http.Post(srv.URL+"/subjects", "application/json", strings.NewReader(`{"id":"s-1"}`))
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()

				resp, err = http.Get(srv.URL + "/subjects/s-1/history?limit=4")
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestRosterMetricsUpdater(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, config.New(), logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		_, err = svc.RegisterSubject(ctx, "s-1", "")
		convey.So(err, convey.ShouldBeNil)
		_, err = svc.RegisterSubject(ctx, "s-2", "")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the updater ticks", func() {
			tickCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()
			startRosterMetricsUpdater(tickCtx, svc, logger.Nop(), 10*time.Millisecond)

			convey.Convey("Then the subject gauge reflects the store", func() {
				registry := metrics.GetRegistry()
				families, err := registry.Gather()
				convey.So(err, convey.ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "wellcheck_risk_subjects_total" {
						found = true
						convey.So(f.GetMetric()[0].GetGauge().GetValue(), convey.ShouldEqual, 2.0)
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})
	})
}

func TestRuntimeCollectors(t *testing.T) {
	convey.Convey("Given the runtime collectors", t, func() {
		convey.Convey("Then registering twice does not panic", func() {
			convey.So(metrics.RegisterRuntimeCollectors, convey.ShouldNotPanic)
			convey.So(metrics.RegisterRuntimeCollectors, convey.ShouldNotPanic)
			n, err := testutil.GatherAndCount(metrics.GetRegistry(), "go_goroutines")
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 1)
		})
	})
}
