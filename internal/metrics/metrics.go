// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	harvestPagesTotal       *prometheus.CounterVec
	harvestRecordsTotal     *prometheus.CounterVec
	harvestDriftTotal       *prometheus.CounterVec
	harvestRunsTotal        *prometheus.CounterVec
	harvestActiveRuns       prometheus.Gauge
	harvestHeadlessTotal    *prometheus.CounterVec
	rateLimitDelaysSeconds  *prometheus.HistogramVec
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDurationSecs *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		harvestPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_pages_total",
				Help: "Pages fetched, labeled by host and outcome.",
			},
			[]string{"host", "outcome"},
		)

		harvestRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_records_total",
				Help: "Records persisted, labeled by resource type and priority.",
			},
			[]string{"resource_type", "priority"},
		)

		harvestDriftTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_drift_total",
				Help: "Content drift events detected, labeled by jurisdiction.",
			},
			[]string{"jurisdiction"},
		)

		harvestRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_runs_total",
				Help: "Jurisdiction runs completed, labeled by status.",
			},
			[]string{"status"},
		)

		harvestActiveRuns = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "harvest_active_runs",
				Help: "Jurisdiction runs currently in flight.",
			},
		)

		harvestHeadlessTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_headless_promotions_total",
				Help: "Fetches promoted to the headless renderer, labeled by host.",
			},
			[]string{"host"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harvest_rate_limit_delays_seconds",
				Help:    "Histogram of per-host rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Status API requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of status API request latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeHost extracts a lowercase hostname from a URL, or "unknown".
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one fetch attempt by host and outcome.
func ObservePage(rawURL, outcome string) {
	harvestPagesTotal.WithLabelValues(SanitizeHost(rawURL), outcome).Inc()
}

// ObserveRecord counts one persisted record.
func ObserveRecord(resourceType string, priority int) {
	harvestRecordsTotal.WithLabelValues(resourceType, strconv.Itoa(priority)).Inc()
}

// ObserveDrift counts one drift event for a jurisdiction.
func ObserveDrift(jurisdiction string) {
	harvestDriftTotal.WithLabelValues(jurisdiction).Inc()
}

// ObserveRun counts one completed jurisdiction run by status.
func ObserveRun(status string) {
	harvestRunsTotal.WithLabelValues(status).Inc()
}

// IncActiveRuns increments the in-flight run gauge.
func IncActiveRuns() {
	harvestActiveRuns.Inc()
}

// DecActiveRuns decrements the in-flight run gauge.
func DecActiveRuns() {
	harvestActiveRuns.Dec()
}

// ObserveHeadlessPromotion counts one headless fallback render.
func ObserveHeadlessPromotion(rawURL string) {
	harvestHeadlessTotal.WithLabelValues(SanitizeHost(rawURL)).Inc()
}

// ObserveRateLimitDelay records how long a fetch waited on the host floor.
func ObserveRateLimitDelay(host string, duration time.Duration) {
	rateLimitDelaysSeconds.WithLabelValues(host).Observe(duration.Seconds())
}

// ObserveHTTPRequest records one status API request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSecs.WithLabelValues(method, route).Observe(duration.Seconds())
}
