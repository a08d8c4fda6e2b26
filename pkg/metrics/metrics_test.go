package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordHTTPRequest("info", "GET", "200")

			Convey("Then metric names should carry namespace and subsystem", func() {
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_http_requests_total")
			})
		})

		Convey("When buckets are unsorted, repeated or non-positive", func() {
			manager := NewManager(WithHistogramBuckets([]float64{50, -1, 5, 0, 50, 500}))

			Convey("Then they should be normalized", func() {
				So(manager.histogramBuckets, ShouldResemble, []float64{5, 50, 500})
			})
		})

		Convey("When only non-positive buckets are given", func() {
			manager := NewManager(WithHistogramBuckets([]float64{0, -5}))

			Convey("Then the defaults should be kept", func() {
				So(manager.histogramBuckets, ShouldResemble, DefaultBuckets)
			})
		})

		Convey("When custom labels are changed after construction", func() {
			labels := map[string]string{"env": "prod"}
			registry := prometheus.NewRegistry()
			manager := NewManager(WithCustomLabels(labels), WithPrometheusRegistry(registry))
			labels["env"] = "dev"
			manager.RecordPayload("root")

			Convey("Then the manager should keep its own copy", func() {
				So(manager.customLabels["env"], ShouldEqual, "prod")
				w := httptest.NewRecorder()
				manager.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
				So(w.Body.String(), ShouldContainSubstring, `env="prod"`)
			})
		})

		Convey("When options receive empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "demo")
				So(manager.subsystem, ShouldEqual, "microservice")
				So(manager.histogramBuckets, ShouldResemble, DefaultBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording HTTP requests", func() {
			manager.RecordHTTPRequest("health", "GET", "200")
			manager.RecordHTTPRequest("health", "GET", "200")
			manager.RecordHTTPRequestDuration("health", "GET", "200", 1.5)

			Convey("Then the counter should reflect them", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("health", "GET", "200")), ShouldEqual, 2)
			})
		})

		Convey("When recording payloads, errors and panics", func() {
			manager.RecordPayload("greeting")
			manager.RecordErrorByType("not_found", "medium")
			manager.RecordErrorByEndpoint("hello_name", "GET", "not_found")
			manager.RecordPanic()

			Convey("Then each counter should be incremented", func() {
				So(testutil.ToFloat64(manager.payloadsBuilt.WithLabelValues("greeting")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorRateByType.WithLabelValues("not_found", "medium")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorRateByEndpoint.WithLabelValues("hello_name", "GET", "not_found")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.panicsRecovered), ShouldEqual, 1)
			})
		})

		Convey("When tracking in-flight requests", func() {
			manager.IncInFlight()
			manager.IncInFlight()
			manager.DecInFlight()

			Convey("Then the gauge should hold the difference", func() {
				So(testutil.ToFloat64(manager.httpInFlight), ShouldEqual, 1)
			})
		})

		Convey("When publishing build info twice", func() {
			manager.SetBuildInfo("demo-microservice", "0.9.0", "go1.24")
			manager.SetBuildInfo("demo-microservice", "1.0.0", "go1.24")

			Convey("Then only the latest identity should remain", func() {
				So(testutil.CollectAndCount(manager.buildInfo), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.buildInfo.WithLabelValues("demo-microservice", "1.0.0", "go1.24")), ShouldEqual, 1)
			})
		})

		Convey("When recording system metrics", func() {
			manager.UpdateSystemMemoryUsage(1024)
			manager.UpdateSystemGoroutineCount(12)
			manager.RecordSystemGCPauseTime(0.5)

			Convey("Then the gauges should be set", func() {
				So(testutil.ToFloat64(manager.systemMemoryUsage), ShouldEqual, 1024)
				So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldEqual, 12)
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording", func() {
			manager.RecordHTTPRequest("root", "GET", "200")
			manager.RecordPayload("root")
			manager.IncInFlight()
			manager.RecordPanic()
			manager.SetBuildInfo("demo-microservice", "1.0.0", "go1.24")

			Convey("Then nothing should be counted", func() {
				So(testutil.CollectAndCount(manager.buildInfo), ShouldEqual, 0)
				So(manager.Enabled(), ShouldBeFalse)
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("root", "GET", "200")), ShouldEqual, 0)
				So(testutil.ToFloat64(manager.payloadsBuilt.WithLabelValues("root")), ShouldEqual, 0)
				So(testutil.ToFloat64(manager.httpInFlight), ShouldEqual, 0)
				So(testutil.ToFloat64(manager.panicsRecovered), ShouldEqual, 0)
			})
		})
	})
}

func TestManagerHandler(t *testing.T) {
	Convey("Given a manager with its own registry", t, func() {
		manager := NewManager(WithNamespace("shop"), WithSubsystem("edge"))
		manager.RecordHTTPRequest("info", "GET", "200")
		manager.RecordPayload("info")

		Convey("When scraping its handler", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
			w := httptest.NewRecorder()
			manager.Handler().ServeHTTP(w, req)

			Convey("Then it should expose only that manager's metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "shop_edge_http_requests_total")
				So(body, ShouldContainSubstring, "shop_edge_payloads_built_total")
				So(body, ShouldNotContainSubstring, "demo_microservice_")
				So(strings.Contains(body, "go_goroutines"), ShouldBeFalse)
			})
		})

		Convey("Then the global manager should be available", func() {
			So(Default(), ShouldNotBeNil)
			So(Default(), ShouldNotEqual, manager)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					manager.RecordHTTPRequest("root", "GET", "200")
					manager.RecordPayload("root")
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then every increment should be counted", func() {
			So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("root", "GET", "200")), ShouldEqual, 1000)
		})
	})
}
