package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "unimarket",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unimarket",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unimarket",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unimarket",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by key family and result.",
		},
		[]string{"family", "result"},
	)

	cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unimarket",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache invalidations by key family and outcome.",
		},
		[]string{"family", "success"},
	)

	recommendationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unimarket",
			Subsystem: "recommendation",
			Name:      "refresh_runs_total",
			Help:      "Recommendation refresh runs by trigger and outcome.",
		},
		[]string{"trigger", "success"},
	)

	recommendationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "unimarket",
			Subsystem: "recommendation",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of recommendation refresh runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unimarket",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of PostgreSQL statements by leading keyword and outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"op", "success"},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "unimarket",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open notification websocket connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		cacheRequests,
		cacheInvalidations,
		recommendationRuns,
		recommendationDuration,
		dbQueryDuration,
		wsConnections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func HTTPStarted() {
	httpInFlight.Inc()
}

// HTTPFinished records one request; route is the matched route pattern, not the raw path.
func HTTPFinished(method, route string, status int, duration time.Duration) {
	httpInFlight.Dec()
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func CacheHit(key string)  { cacheRequests.WithLabelValues(KeyFamily(key), "hit").Inc() }
func CacheMiss(key string) { cacheRequests.WithLabelValues(KeyFamily(key), "miss").Inc() }

func CacheInvalidated(key string, success bool) {
	cacheInvalidations.WithLabelValues(KeyFamily(key), strconv.FormatBool(success)).Inc()
}

func RecordRecommendationRefresh(trigger string, duration time.Duration, success bool) {
	if trigger == "" {
		trigger = "unknown"
	}
	recommendationRuns.WithLabelValues(trigger, strconv.FormatBool(success)).Inc()
	recommendationDuration.Observe(duration.Seconds())
}

func RecordDBQuery(op string, duration time.Duration, success bool) {
	dbQueryDuration.WithLabelValues(op, strconv.FormatBool(success)).Observe(duration.Seconds())
}

func WSConnected()    { wsConnections.Inc() }
func WSDisconnected() { wsConnections.Dec() }

// KeyFamily keeps the first three colon segments of a cache key so ids and
// pagination values do not explode label cardinality.
func KeyFamily(key string) string {
	parts := strings.SplitN(key, ":", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i, p := range parts {
		if p == "" || p == "*" || isIDLike(p) {
			parts = parts[:i]
			break
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ":")
}

func isIDLike(s string) bool {
	if len(s) == 36 && strings.Count(s, "-") == 4 {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
