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

	batchesTotal    *prometheus.CounterVec
	imagesTotal     *prometheus.CounterVec
	batchSize       *prometheus.HistogramVec
	extractDuration *prometheus.HistogramVec
	exportsTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vlmt",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vlmt",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vlmt",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vlmt",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Total processed batches by outcome.",
		},
		[]string{"service", "outcome"},
	)
	imagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vlmt",
			Subsystem: "pipeline",
			Name:      "images_total",
			Help:      "Total processed images by result status.",
		},
		[]string{"service", "status"},
	)
	batchSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vlmt",
			Subsystem: "pipeline",
			Name:      "batch_size",
			Help:      "Distribution of images per batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"service"},
	)
	extractDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vlmt",
			Subsystem: "pipeline",
			Name:      "batch_duration_seconds",
			Help:      "Whole-batch processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vlmt",
			Subsystem: "pipeline",
			Name:      "exports_total",
			Help:      "Total export downloads by format.",
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		batchesTotal,
		imagesTotal,
		batchSize,
		extractDuration,
		exportsTotal,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		batchesTotal:    batchesTotal,
		imagesTotal:     imagesTotal,
		batchSize:       batchSize,
		extractDuration: extractDuration,
		exportsTotal:    exportsTotal,
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
	case strings.HasPrefix(path, "/v1/exports/"):
		return "/v1/exports/{format}"
	default:
		return path
	}
}

// RecordBatch records one completed (or rejected) batch along with its
// per-image result statuses.
func (m *HTTPServerMetrics) RecordBatch(service, outcome string, statuses []string, size int, duration time.Duration) {
	m.batchesTotal.WithLabelValues(service, outcome).Inc()
	if size > 0 {
		m.batchSize.WithLabelValues(service).Observe(float64(size))
	}
	if duration > 0 {
		m.extractDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
	for _, status := range statuses {
		m.imagesTotal.WithLabelValues(service, status).Inc()
	}
}

func (m *HTTPServerMetrics) RecordExport(service, format string) {
	if format == "" {
		format = "unknown"
	}
	m.exportsTotal.WithLabelValues(service, format).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
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
