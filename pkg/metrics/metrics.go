// Package metrics exposes prometheus counters for databin traffic
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ssargent/databin/pkg/codec"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	directionRead  = "read"
	directionWrite = "write"
)

// Metrics holds all Prometheus metrics for codec and API traffic. It
// implements codec.Observer.
type Metrics struct {
	// Record metrics
	recordsTotal      *prometheus.CounterVec
	payloadBytesTotal *prometheus.CounterVec

	// Stream metrics
	streamOperationsTotal   *prometheus.CounterVec
	streamOperationDuration *prometheus.HistogramVec
	streamsStored           prometheus.Gauge

	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "databin_records_total",
				Help: "Total number of records read or written",
			},
			[]string{"direction", "tag"},
		),

		payloadBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "databin_payload_bytes_total",
				Help: "Total payload bytes read or written, excluding record headers",
			},
			[]string{"direction"},
		),

		streamOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "databin_stream_operations_total",
				Help: "Total number of stored stream operations",
			},
			[]string{"operation", "status"},
		),

		streamOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "databin_stream_operation_duration_seconds",
				Help:    "Stored stream operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		streamsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "databin_streams_stored",
				Help: "Number of streams in the store",
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "databin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "databin_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// RecordWritten counts an encoded record
func (m *Metrics) RecordWritten(tag codec.Tag, payloadSize int) {
	m.recordsTotal.WithLabelValues(directionWrite, tag.String()).Inc()
	m.payloadBytesTotal.WithLabelValues(directionWrite).Add(float64(payloadSize))
}

// RecordRead counts a decoded record
func (m *Metrics) RecordRead(tag codec.Tag, payloadSize int) {
	m.recordsTotal.WithLabelValues(directionRead, tag.String()).Inc()
	m.payloadBytesTotal.WithLabelValues(directionRead).Add(float64(payloadSize))
}

// RecordStreamOperation records a store operation
func (m *Metrics) RecordStreamOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.streamOperationsTotal.WithLabelValues(operation, status).Inc()
	m.streamOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetStreamsStored updates the stored stream gauge
func (m *Metrics) SetStreamsStored(n int) {
	m.streamsStored.Set(float64(n))
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var _ codec.Observer = (*Metrics)(nil)
