package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalRequestsTotal *prometheus.CounterVec
	retrievalOutcomeTotal  *prometheus.CounterVec
	retrievedDocuments     *prometheus.HistogramVec
	retrievalDuration      *prometheus.HistogramVec
	llmTokensTotal         *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "csa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "csa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csa",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total retrieval requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalOutcomeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csa",
			Subsystem: "retrieval",
			Name:      "outcome_total",
			Help:      "Retrieval requests by outcome: rejected, filtered, fallback, unfiltered, error.",
		},
		[]string{"service", "endpoint", "outcome"},
	)
	retrievedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "csa",
			Subsystem: "retrieval",
			Name:      "retrieved_documents",
			Help:      "Distribution of retrieved documents per request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "csa",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "csa",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Token usage by direction.",
		},
		[]string{"service", "direction", "model"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalRequestsTotal,
		retrievalOutcomeTotal,
		retrievedDocuments,
		retrievalDuration,
		llmTokensTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		retrievalRequestsTotal: retrievalRequestsTotal,
		retrievalOutcomeTotal:  retrievalOutcomeTotal,
		retrievedDocuments:     retrievedDocuments,
		retrievalDuration:      retrievalDuration,
		llmTokensTotal:         llmTokensTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/catalog/items/"):
		return "/v1/catalog/items/{upc}"
	default:
		return path
	}
}

// RecordRetrieval records one retrieval request. The outcome label follows
// the result shape: rejected, filtered, fallback, unfiltered, or error.
func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint, outcome string, documentCount int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.retrievalRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievalOutcomeTotal.WithLabelValues(service, endpoint, outcome).Inc()
	m.retrievedDocuments.WithLabelValues(service, endpoint).Observe(float64(documentCount))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordTokenUsage(service, model string, promptTokens, completionTokens int) {
	if model == "" {
		model = "unknown"
	}
	if promptTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "in", model).Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "out", model).Add(float64(completionTokens))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
