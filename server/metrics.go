package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vine-io/flowview/bpmn"
)

type metrics struct {
	registry    *prometheus.Registry
	extractions *prometheus.CounterVec
	elements    *prometheus.CounterVec
	sessions    prometheus.GaugeFunc
	duration    *prometheus.HistogramVec
}

func newMetrics(store *Store) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowview",
				Name:      "extractions_total",
				Help:      "Documents scanned, by outcome (elements or empty).",
			},
			[]string{"outcome"},
		),
		elements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowview",
				Name:      "elements_total",
				Help:      "Elements recognised, by kind.",
			},
			[]string{"kind"},
		),
		sessions: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "flowview",
				Name:      "sessions_open",
				Help:      "Viewer sessions currently held.",
			},
			func() float64 { return float64(store.Len()) },
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flowview",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
	m.registry.MustRegister(m.extractions, m.elements, m.sessions, m.duration)
	return m
}

func (m *metrics) observeDocument(s bpmn.Sequence) {
	outcome := "elements"
	if s.IsEmpty() {
		outcome = "empty"
	}
	m.extractions.WithLabelValues(outcome).Inc()

	counts := s.Counts()
	for _, kind := range bpmn.Kinds {
		if n := counts.Of(kind); n > 0 {
			m.elements.WithLabelValues(kind.String()).Add(float64(n))
		}
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.duration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
