package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the studio collectors. Each Recorder registers into its own
// registry so several instances (tests, the batch command) never collide.
// A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	remoteRequests *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	generations    *prometheus.CounterVec
	historyEntries prometheus.Gauge
	httpRequests   *prometheus.CounterVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		remoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_remote_requests_total",
			Help: "Calls made to the generation backend, partitioned by operation and outcome.",
		}, []string{"operation", "outcome"}),
		remoteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_remote_request_duration_seconds",
			Help:    "Latency of generation backend calls.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"operation"}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_generations_total",
			Help: "Generation attempts, partitioned by stage and outcome.",
		}, []string{"stage", "outcome"}),
		historyEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "studio_history_entries",
			Help: "Number of entries currently held in the generation history.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "HTTP API requests, partitioned by route and status class.",
		}, []string{"route", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRemote records one backend call. err decides the outcome label.
func (r *Recorder) ObserveRemote(operation string, started time.Time, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.remoteRequests.WithLabelValues(operation, outcome).Inc()
	r.remoteDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Generation counts one state machine cycle for stage.
func (r *Recorder) Generation(stage, outcome string) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(stage, outcome).Inc()
}

// HistorySize publishes the current history length.
func (r *Recorder) HistorySize(n int) {
	if r == nil {
		return
	}
	r.historyEntries.Set(float64(n))
}

// HTTPRequest counts one API request.
func (r *Recorder) HTTPRequest(route string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
