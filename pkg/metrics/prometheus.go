// Package metrics provides Prometheus metrics for the star-chart pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage duration buckets in milliseconds; embedding rounds on a full season
// take tens of seconds.
var defaultBuckets = []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000, 120000} //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingest
	rowsIngested prometheus.Counter
	rowsDropped  *prometheus.CounterVec

	// Stage timings
	stageDuration *prometheus.HistogramVec

	// Partition quality
	groupsFormed     *prometheus.GaugeVec
	noiseRows        *prometheus.CounterVec
	degenerateRounds *prometheus.CounterVec

	// Work counters
	nameComparisons prometheus.Counter
	embeddingEpochs prometheus.Counter
	rowsWritten     prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "starchart",
		subsystem:        "pipeline",
		histogramBuckets: defaultBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_ingested_total",
		Help:        "Goal rows read from the input table",
		ConstLabels: m.constLabels,
	})

	m.rowsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_dropped_total",
		Help:        "Goal rows dropped during ingest, by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Wall time of each pipeline stage in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.groupsFormed = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "groups_formed",
		Help:        "Number of distinct groups at each hierarchy level after the last run",
		ConstLabels: m.constLabels,
	}, []string{"level"})

	m.noiseRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "noise_rows_total",
		Help:        "Rows labeled as density noise and folded into the sink group, by round",
		ConstLabels: m.constLabels,
	}, []string{"round"})

	m.degenerateRounds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "degenerate_rounds_total",
		Help:        "Clustering invocations that collapsed to a single bucket, by round",
		ConstLabels: m.constLabels,
	}, []string{"round"})

	m.nameComparisons = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "name_comparisons_total",
		Help:        "Pairwise string-distance evaluations performed by name grouping",
		ConstLabels: m.constLabels,
	})

	m.embeddingEpochs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "embedding_epochs_total",
		Help:        "Optimization epochs executed by the embedding reducer",
		ConstLabels: m.constLabels,
	})

	m.rowsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_written_total",
		Help:        "Rows written to the output table",
		ConstLabels: m.constLabels,
	})
}

// RecordRowsIngested adds n rows read from the input table.
func (m *Manager) RecordRowsIngested(n int) {
	if m.enabled {
		m.rowsIngested.Add(float64(n))
	}
}

// RecordRowsDropped adds n rows dropped for reason.
func (m *Manager) RecordRowsDropped(reason string, n int) {
	if m.enabled {
		m.rowsDropped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordStageDuration observes a stage duration in milliseconds.
func (m *Manager) RecordStageDuration(stage string, ms float64) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(ms)
	}
}

// UpdateGroupsFormed sets the group count for a hierarchy level.
func (m *Manager) UpdateGroupsFormed(level string, n int) {
	if m.enabled {
		m.groupsFormed.WithLabelValues(level).Set(float64(n))
	}
}

// RecordNoiseRows adds n noise rows for round.
func (m *Manager) RecordNoiseRows(round string, n int) {
	if m.enabled {
		m.noiseRows.WithLabelValues(round).Add(float64(n))
	}
}

// RecordDegenerateRound counts a collapsed clustering invocation.
func (m *Manager) RecordDegenerateRound(round string) {
	if m.enabled {
		m.degenerateRounds.WithLabelValues(round).Inc()
	}
}

// RecordNameComparisons adds n string-distance evaluations.
func (m *Manager) RecordNameComparisons(n int) {
	if m.enabled {
		m.nameComparisons.Add(float64(n))
	}
}

// RecordEmbeddingEpochs adds n optimization epochs.
func (m *Manager) RecordEmbeddingEpochs(n int) {
	if m.enabled {
		m.embeddingEpochs.Add(float64(n))
	}
}

// RecordRowsWritten adds n written rows.
func (m *Manager) RecordRowsWritten(n int) {
	if m.enabled {
		m.rowsWritten.Add(float64(n))
	}
}

// RecordRowsIngested adds n rows read on the global manager.
func RecordRowsIngested(n int) { globalManager.RecordRowsIngested(n) }

// RecordRowsDropped adds n dropped rows on the global manager.
func RecordRowsDropped(reason string, n int) { globalManager.RecordRowsDropped(reason, n) }

// RecordStageDuration observes a stage duration on the global manager.
func RecordStageDuration(stage string, ms float64) { globalManager.RecordStageDuration(stage, ms) }

// UpdateGroupsFormed sets a level's group count on the global manager.
func UpdateGroupsFormed(level string, n int) { globalManager.UpdateGroupsFormed(level, n) }

// RecordNoiseRows adds noise rows on the global manager.
func RecordNoiseRows(round string, n int) { globalManager.RecordNoiseRows(round, n) }

// RecordDegenerateRound counts a degenerate round on the global manager.
func RecordDegenerateRound(round string) { globalManager.RecordDegenerateRound(round) }

// RecordNameComparisons adds string-distance evaluations on the global manager.
func RecordNameComparisons(n int) { globalManager.RecordNameComparisons(n) }

// RecordEmbeddingEpochs adds optimization epochs on the global manager.
func RecordEmbeddingEpochs(n int) { globalManager.RecordEmbeddingEpochs(n) }

// RecordRowsWritten adds written rows on the global manager.
func RecordRowsWritten(n int) { globalManager.RecordRowsWritten(n) }

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
