package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics holds the server's Prometheus instruments on a private
// registry, so tests can build isolated instances.
type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	turnsTotal      *prometheus.CounterVec
	turnDuration    *prometheus.HistogramVec
	uploadsTotal    *prometheus.CounterVec
	retrievedChunks *prometheus.HistogramVec
	sessionsActive  prometheus.Gauge
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vstudent",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vstudent",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vstudent",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vstudent",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total conversation turns by session mode and outcome.",
		},
		[]string{"service", "mode", "status"},
	)
	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vstudent",
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "mode"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vstudent",
			Subsystem: "index",
			Name:      "uploads_total",
			Help:      "Total document uploads by outcome.",
		},
		[]string{"service", "status"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vstudent",
			Subsystem: "index",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved chunks per grounded turn.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12},
		},
		[]string{"service"},
	)
	sessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vstudent",
			Subsystem: "chat",
			Name:      "sessions_active",
			Help:      "Number of live conversation sessions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		turnsTotal,
		turnDuration,
		uploadsTotal,
		retrievedChunks,
		sessionsActive,
	)

	return &ServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		turnsTotal:      turnsTotal,
		turnDuration:    turnDuration,
		uploadsTotal:    uploadsTotal,
		retrievedChunks: retrievedChunks,
		sessionsActive:  sessionsActive,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
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

// normalizePath collapses per-session paths so session IDs do not blow
// up the label cardinality.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/conversations/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/conversations/")
	if rest == "" {
		return path
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 1 {
		return "/v1/conversations/{session_id}"
	}
	return "/v1/conversations/{session_id}/" + parts[1]
}

func (m *ServerMetrics) RecordTurn(service, mode, status string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	m.turnsTotal.WithLabelValues(service, mode, status).Inc()
	m.turnDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
}

func (m *ServerMetrics) RecordUpload(service, status string) {
	m.uploadsTotal.WithLabelValues(service, status).Inc()
}

func (m *ServerMetrics) RecordRetrievedChunks(service string, count int) {
	m.retrievedChunks.WithLabelValues(service).Observe(float64(count))
}

func (m *ServerMetrics) SessionStarted() { m.sessionsActive.Inc() }
func (m *ServerMetrics) SessionEnded()   { m.sessionsActive.Dec() }

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
