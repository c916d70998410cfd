package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Messages framed per direction and opcode.",
		},
		[]string{"direction", "opcode", "decoded"},
	)
	messageBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcwire",
			Subsystem: "stream",
			Name:      "message_bytes",
			Help:      "Size of framed messages in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"direction"},
	)
	stalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "stream",
			Name:      "stalls_total",
			Help:      "Deliveries that ended waiting for more bytes.",
		},
		[]string{"direction"},
	)
	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "stream",
			Name:      "failures_total",
			Help:      "Directions marked unparseable.",
		},
		[]string{"direction", "opcode"},
	)
	discarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "stream",
			Name:      "discarded_bytes_total",
			Help:      "Bytes dropped after a direction became unparseable.",
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, messages, messageBytes, stalls, failures, discarded)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordMessage(direction, opcode string, size int, decoded bool) {
	RegisterMetrics()
	messages.WithLabelValues(direction, opcode, strconv.FormatBool(decoded)).Inc()
	messageBytes.WithLabelValues(direction).Observe(float64(size))
}

func RecordStall(direction string) {
	RegisterMetrics()
	stalls.WithLabelValues(direction).Inc()
}

func RecordFailure(direction, opcode string) {
	RegisterMetrics()
	failures.WithLabelValues(direction, opcode).Inc()
}

func RecordDiscarded(direction string, n int) {
	RegisterMetrics()
	discarded.WithLabelValues(direction).Add(float64(n))
}
