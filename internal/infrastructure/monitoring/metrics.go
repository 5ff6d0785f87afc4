package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "openedfiles"

// Metrics holds all Prometheus metrics.
//
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Tracker metrics
	DocumentsTracked prometheus.Gauge
	SurfacesLive     prometheus.Gauge
	SurfacePending   prometheus.Gauge
	Snapshots        prometheus.Gauge
	Captures         *prometheus.CounterVec
	Restores         *prometheus.CounterVec
	Evictions        prometheus.Counter
	SweptHandles     prometheus.Counter
	HostEvents       *prometheus.CounterVec

	// Operation metrics
	OperationDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	TrackedDocuments  int64   `json:"tracked_documents"`
	ActiveConnections int64   `json:"active_connections"`
	Restores          int64   `json:"restores"`
	Evictions         int64   `json:"evictions"`
	TotalDuration     float64 `json:"-"` // sum of all request durations
	RequestCount      int64   `json:"-"` // count for averaging
}

// NewMetrics creates a metrics collector registered with reg. Pass
// prometheus.DefaultRegisterer in production and prometheus.NewRegistry()
// in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	// HTTP metrics
	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
	m.RequestSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Tracker metrics
	m.DocumentsTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "documents_tracked",
		Help:      "Number of documents in the opened-files list",
	})
	m.SurfacesLive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "surfaces_live",
		Help:      "Number of tracked documents with a live editing surface",
	})
	m.SurfacePending = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "surface_pending",
		Help:      "1 while an unclaimed surface handle is held",
	})
	m.Snapshots = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshots_held",
		Help:      "Number of tracked documents holding a snapshot",
	})
	m.Captures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Editor state captures by result",
		},
		[]string{"result"},
	)
	m.Restores = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restores_total",
			Help:      "Editor state restores by result",
		},
		[]string{"result"},
	)
	m.Evictions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evictions_total",
		Help:      "Documents evicted by the max-open policy",
	})
	m.SweptHandles = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swept_handles_total",
		Help:      "Stale live handles cleared by the sweep",
	})
	m.HostEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_events_total",
			Help:      "Host events handled by type",
		},
		[]string{"type"},
	)

	// Operation metrics
	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Tracker operation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"component", "operation"},
	)

	// WebSocket metrics
	m.WSConnections = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Number of connected editor hosts",
	})
	m.WSMessages = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Total number of WebSocket messages",
		},
		[]string{"direction", "type"},
	)

	// System metrics
	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SetTracker publishes the registry's current counts
func (m *Metrics) SetTracker(documents, live, snapshots int, pending bool) {
	if m == nil {
		return
	}
	m.DocumentsTracked.Set(float64(documents))
	m.SurfacesLive.Set(float64(live))
	m.Snapshots.Set(float64(snapshots))
	if pending {
		m.SurfacePending.Set(1)
	} else {
		m.SurfacePending.Set(0)
	}

	m.mu.Lock()
	m.snapshot.TrackedDocuments = int64(documents)
	m.mu.Unlock()
}

// RecordCapture records an editor state capture
func (m *Metrics) RecordCapture(result string) {
	if m == nil {
		return
	}
	m.Captures.WithLabelValues(result).Inc()
}

// RecordRestore records an editor state restore
func (m *Metrics) RecordRestore(result string) {
	if m == nil {
		return
	}
	m.Restores.WithLabelValues(result).Inc()

	m.mu.Lock()
	m.snapshot.Restores++
	m.mu.Unlock()
}

// AddEvictions records documents dropped by the max-open policy
func (m *Metrics) AddEvictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Evictions.Add(float64(n))

	m.mu.Lock()
	m.snapshot.Evictions += int64(n)
	m.mu.Unlock()
}

// AddSweptHandles records live handles cleared by the sweep
func (m *Metrics) AddSweptHandles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweptHandles.Add(float64(n))
}

// RecordHostEvent records a host event
func (m *Metrics) RecordHostEvent(eventType string) {
	if m == nil {
		return
	}
	m.HostEvents.WithLabelValues(eventType).Inc()
}

// RecordOperation records a tracker operation duration
func (m *Metrics) RecordOperation(component, operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(component, operation).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
