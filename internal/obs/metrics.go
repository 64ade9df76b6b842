package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	importElementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_elements_total",
			Help: "Elements parsed from ledger import files.",
		},
		[]string{"kind"},
	)

	importWarningsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_warnings_total",
		Help: "Malformed elements skipped during ledger imports.",
	})
)

// Init registers the metrics in the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
		importElementsTotal, importWarningsTotal)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CountImport records what an import produced.
func CountImport(accounts, transactions, commodities, warnings int) {
	importElementsTotal.WithLabelValues("account").Add(float64(accounts))
	importElementsTotal.WithLabelValues("transaction").Add(float64(transactions))
	importElementsTotal.WithLabelValues("commodity").Add(float64(commodities))
	importWarningsTotal.Add(float64(warnings))
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses resource ids so metric label cardinality stays
// bounded: /v1/accounts/<uuid>/balance becomes /v1/accounts/:id/balance.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "v1" {
		return path
	}
	switch segments[1] {
	case "entities", "accounts", "transactions", "groups", "units":
	default:
		return path
	}
	if len(segments) == 3 {
		return "/v1/" + segments[1] + "/:id"
	}
	if len(segments) == 4 {
		switch segments[3] {
		case "accounts", "balance", "balance-sheet", "ledger", "transactions":
			return "/v1/" + segments[1] + "/:id/" + segments[3]
		}
	}
	return path
}

// statusWriter captures the response code for labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
