// Package metrics provides Prometheus metrics for the eve-value service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RefreshCyclesTotal is a counter of completed refresh cycles.
	RefreshCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycles_total",
			Help: "Total number of refresh cycles by outcome",
		},
		[]string{"status"},
	)

	// RefreshDuration is a histogram of refresh cycle durations.
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Duration of full refresh cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FeedRequestsTotal is a counter of rate feed fetches.
	FeedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of rate feed fetches by outcome",
		},
		[]string{"source", "status"},
	)

	// FeedRequestDuration is a histogram of rate feed fetch latencies.
	FeedRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_request_duration_seconds",
			Help:    "Rate feed fetch latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// FeedCandidates is a gauge of candidates extracted per source on the last fetch.
	FeedCandidates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_candidates",
			Help: "Number of rate candidates extracted on the last fetch",
		},
		[]string{"source"},
	)

	// FeedHealth is a gauge of the health status of rate feeds.
	FeedHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_health",
			Help: "Health status of rate feeds (1=healthy, 0=unhealthy)",
		},
		[]string{"source"},
	)

	// ReferenceRate is a gauge of the current reference rate in ISK per unit.
	ReferenceRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reference_rate_isk",
			Help: "Current reference rate in ISK per unit",
		},
	)

	// SnapshotRows is a gauge of rows in the current snapshot.
	SnapshotRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "snapshot_rows",
			Help: "Number of rows in the current snapshot",
		},
		[]string{"kind"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	// Register all metrics
	prometheus.MustRegister(
		RefreshCyclesTotal,
		RefreshDuration,
		FeedRequestsTotal,
		FeedRequestDuration,
		FeedCandidates,
		FeedHealth,
		ReferenceRate,
		SnapshotRows,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordRefresh records a finished refresh cycle.
func RecordRefresh(status string, duration time.Duration) {
	RefreshCyclesTotal.WithLabelValues(status).Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// RecordFeedRequest records a rate feed fetch.
func RecordFeedRequest(source, status string, duration time.Duration) {
	FeedRequestsTotal.WithLabelValues(source, status).Inc()
	FeedRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFeedCandidates records how many candidates a source produced.
func RecordFeedCandidates(source string, count int) {
	FeedCandidates.WithLabelValues(source).Set(float64(count))
}

// RecordFeedHealth records the health status of a feed.
func RecordFeedHealth(source string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	FeedHealth.WithLabelValues(source).Set(val)
}

// RecordReferenceRate records the aggregated reference rate.
func RecordReferenceRate(rate float64) {
	ReferenceRate.Set(rate)
}

// RecordSnapshotRows records the row counts of the current snapshot.
func RecordSnapshotRows(offers, plans int) {
	SnapshotRows.WithLabelValues("offers").Set(float64(offers))
	SnapshotRows.WithLabelValues("plans").Set(float64(plans))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
