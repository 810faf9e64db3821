// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry and the collectors registered on it. Each App
// builds its own, so nothing is shared through the default registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	linksCreatedTotal   prometheus.Counter
	slugConflictsTotal  prometheus.Counter
	resolvesTotal       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		linksCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "short_links_created_total",
				Help: "Total number of short links created",
			},
		),
		slugConflictsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "slug_conflicts_total",
				Help: "Total number of create requests rejected because the slug was in use",
			},
		),
		resolvesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slug_resolves_total",
				Help: "Total number of slug lookups by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordLinkCreated() {
	m.linksCreatedTotal.Inc()
}

func (m *Metrics) RecordSlugConflict() {
	m.slugConflictsTotal.Inc()
}

// RecordResolve counts a lookup as "found" or "missing".
func (m *Metrics) RecordResolve(found bool) {
	outcome := "missing"
	if found {
		outcome = "found"
	}
	m.resolvesTotal.WithLabelValues(outcome).Inc()
}

// Instrument records request count and latency per chi route pattern, so
// every slug shares the "/{id}" series.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, route, strconv.Itoa(status)}

		m.httpRequestsTotal.WithLabelValues(labels...).Inc()
		m.httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
