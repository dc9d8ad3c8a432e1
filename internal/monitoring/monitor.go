package monitoring

import (
	"sync"
	"time"
)

// Monitor collects and provides in-memory metrics for the dashboard's
// lightweight JSON metrics endpoint.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordSyncRun records the outcome of a catalog sync run, keyed per owner.
func (m *Monitor) RecordSyncRun(ownerID string, itemsProcessed, itemsCreated, itemsFailed int, durationMs int64) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := ownerID + "_sync_"
	m.metrics[prefix+"items_processed"] = itemsProcessed
	m.metrics[prefix+"items_created"] = itemsCreated
	m.metrics[prefix+"items_failed"] = itemsFailed
	m.metrics[prefix+"duration_ms"] = durationMs
	m.metrics[prefix+"last_run"] = time.Now().Format(time.RFC3339)
}
