package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's Prometheus collectors.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	filterTime  prometheus.Histogram
	viewSize    prometheus.Histogram
	datasetSize prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		filterTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filter_duration_seconds",
			Help:    "Time spent applying filter criteria and computing aggregates.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		viewSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filtered_listings",
			Help:    "Number of listings left after filtering.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		datasetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_listings",
			Help: "Number of listings in the loaded dataset.",
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.filterTime, m.viewSize, m.datasetSize,
		collectors.NewGoCollector())
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetDatasetSize records the size of the loaded dataset.
func (m *Metrics) SetDatasetSize(n int) {
	m.datasetSize.Set(float64(n))
}

// ObserveFilter records one filter-and-aggregate pass.
func (m *Metrics) ObserveFilter(d time.Duration, listings int) {
	m.filterTime.Observe(d.Seconds())
	m.viewSize.Observe(float64(listings))
}

// Middleware counts requests by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
