package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkly_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkly_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkly_booking_transitions_total",
			Help: "Booking state transitions by operation and resulting status",
		},
		[]string{"operation", "status"},
	)

	bookingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkly_booking_failures_total",
			Help: "Rejected booking operations by error code",
		},
		[]string{"operation", "code"},
	)

	ledgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkly_ledger_entries_total",
			Help: "Wallet ledger entries by type",
		},
		[]string{"type"},
	)

	sweepOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkly_sweep_bookings_total",
			Help: "Stale bookings processed by the expiry sweeper",
		},
		[]string{"outcome"},
	)

	sweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parkly_sweep_runs_total",
			Help: "Completed expiry sweeper runs",
		},
	)
)

func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordBookingTransition(operation, status string) {
	bookingTransitionsTotal.WithLabelValues(operation, status).Inc()
}

func RecordBookingFailure(operation, code string) {
	bookingFailuresTotal.WithLabelValues(operation, code).Inc()
}

func RecordLedgerEntry(entryType string) {
	ledgerEntriesTotal.WithLabelValues(entryType).Inc()
}

// RecordSweep records one sweeper pass.
func RecordSweep(processed, skipped, failed int) {
	sweepRunsTotal.Inc()
	sweepOutcomesTotal.WithLabelValues("processed").Add(float64(processed))
	sweepOutcomesTotal.WithLabelValues("skipped").Add(float64(skipped))
	sweepOutcomesTotal.WithLabelValues("failed").Add(float64(failed))
}
