package monitoring

import "time"

// Snapshot returns the current JSON-friendly metric values
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// AverageLatency returns the mean HTTP request duration
func (m *Metrics) AverageLatency() time.Duration {
	s := m.Snapshot()
	if s.RequestCount == 0 {
		return 0
	}
	return time.Duration(s.TotalDuration / float64(s.RequestCount) * float64(time.Second))
}

// Summary returns the values served by the health endpoint
func (m *Metrics) Summary() map[string]interface{} {
	s := m.Snapshot()
	return map[string]interface{}{
		"total_requests":     s.TotalRequests,
		"total_errors":       s.TotalErrors,
		"tracked_documents":  s.TrackedDocuments,
		"active_connections": s.ActiveConnections,
		"restores":           s.Restores,
		"evictions":          s.Evictions,
		"avg_latency_ms":     float64(m.AverageLatency().Microseconds()) / 1000,
	}
}
