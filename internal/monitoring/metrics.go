package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the prometheus collectors for the catalog sync pipeline.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	ItemsProcessed  prometheus.Counter
	ItemsFailed     prometheus.Counter
	EntitiesCreated *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// NewMetrics builds and registers the sync collectors on the given
// registerer (pass prometheus.DefaultRegisterer in main).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Completed catalog sync runs by outcome.",
		}, []string{"status"}),
		ItemsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_sync_items_processed_total",
			Help: "Catalog items processed across all sync runs.",
		}),
		ItemsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_sync_items_failed_total",
			Help: "Catalog items that failed assembly across all sync runs.",
		}),
		EntitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_entities_created_total",
			Help: "Canonical entities created by sync runs, by kind.",
		}, []string{"kind"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Wall-clock duration of catalog sync runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	reg.MustRegister(m.RunsTotal, m.ItemsProcessed, m.ItemsFailed, m.EntitiesCreated, m.RunDuration)
	return m
}

// ObserveRun records the outcome of one completed sync run.
func (m *Metrics) ObserveRun(success bool, itemsProcessed, itemsFailed int, allergensCreated, ingredientsCreated, menuItemsCreated int, durationMs int64) {
	status := "success"
	if !success {
		status = "partial"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.ItemsProcessed.Add(float64(itemsProcessed))
	m.ItemsFailed.Add(float64(itemsFailed))
	m.EntitiesCreated.WithLabelValues("allergen").Add(float64(allergensCreated))
	m.EntitiesCreated.WithLabelValues("ingredient").Add(float64(ingredientsCreated))
	m.EntitiesCreated.WithLabelValues("menu_item").Add(float64(menuItemsCreated))
	m.RunDuration.Observe(float64(durationMs) / 1000.0)
}
