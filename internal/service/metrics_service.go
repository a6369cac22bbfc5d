package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the scheduling domain.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	bookingsCreated   prometheus.Counter
	bookingConflicts  prometheus.Counter
	bookingsCancelled prometheus.Counter
	noShowsRecorded   prometheus.Counter
	noShowSuspensions prometheus.Counter
	postingsReplaced  prometheus.Counter
	gridLanesObserved prometheus.Histogram
	dbQueryDuration   *prometheus.HistogramVec
}

// NewMetricsService registers the collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	bookingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total bookings successfully created",
	})

	bookingConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Total booking attempts rejected for overlapping an existing booking",
	})

	bookingsCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Total bookings cancelled",
	})

	noShowsRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "no_shows_recorded_total",
		Help: "Total student no-shows recorded",
	})

	noShowSuspensions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "no_show_suspensions_total",
		Help: "Total students suspended for repeated no-shows",
	})

	postingsReplaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "week_postings_replaced_total",
		Help: "Total week availability submissions accepted",
	})

	gridLanesObserved := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "week_grid_lanes",
		Help:    "Lane count of computed week grids",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		bookingsCreated, bookingConflicts, bookingsCancelled, noShowsRecorded,
		noShowSuspensions, postingsReplaced, gridLanesObserved, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		bookingsCreated:   bookingsCreated,
		bookingConflicts:  bookingConflicts,
		bookingsCancelled: bookingsCancelled,
		noShowsRecorded:   noShowsRecorded,
		noShowSuspensions: noShowSuspensions,
		postingsReplaced:  postingsReplaced,
		gridLanesObserved: gridLanesObserved,
		dbQueryDuration:   dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation counts a cache lookup outcome.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordBookingCreated counts a successful booking.
func (m *MetricsService) RecordBookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// RecordBookingConflict counts a rejected booking attempt.
func (m *MetricsService) RecordBookingConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

// RecordBookingCancelled counts a cancellation.
func (m *MetricsService) RecordBookingCancelled() {
	if m == nil {
		return
	}
	m.bookingsCancelled.Inc()
}

// RecordNoShow counts a recorded no-show; suspended marks threshold crossings.
func (m *MetricsService) RecordNoShow(suspended bool) {
	if m == nil {
		return
	}
	m.noShowsRecorded.Inc()
	if suspended {
		m.noShowSuspensions.Inc()
	}
}

// RecordPostingsReplaced counts an accepted week submission.
func (m *MetricsService) RecordPostingsReplaced() {
	if m == nil {
		return
	}
	m.postingsReplaced.Inc()
}

// ObserveDBQuery records the duration of a named database query.
func (m *MetricsService) ObserveDBQuery(query string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// ObserveGridLanes records the lane watermark of a computed grid.
func (m *MetricsService) ObserveGridLanes(lanes int) {
	if m == nil {
		return
	}
	m.gridLanesObserved.Observe(float64(lanes))
}
