package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	listResults *prometheus.HistogramVec
	rateLimited prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradeboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tradeboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		listResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tradeboard",
			Name:      "list_page_items",
			Help:      "Records returned per list page.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"resource"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tradeboard",
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.listResults, m.rateLimited)
	return m
}

func (m *metrics) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.requests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *metrics) observePage(resource string, n int) {
	m.listResults.WithLabelValues(resource).Observe(float64(n))
}
