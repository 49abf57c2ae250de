// Package metrics exposes Prometheus instruments for report generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nps-insights-go/internal/types"
)

const namespace = "nps_insights"

// Manager owns every collector. A nil *Manager is valid and records nothing.
type Manager struct {
	registry *prometheus.Registry

	reportsGenerated   prometheus.Counter
	reportDuration     prometheus.Histogram
	recordsLoaded      prometheus.Counter
	recordIssues       *prometheus.CounterVec
	commentsClassified *prometheus.CounterVec
	classifierErrors   prometheus.Counter
	backendReady       *prometheus.GaugeVec
}

func New() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		reportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Number of NPS reports generated.",
		}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent building one report.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),
		recordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Survey records accepted by the dataset loader.",
		}),
		recordIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_issues_total",
			Help:      "Per-record problems found while loading, by kind.",
		}, []string{"kind"}),
		commentsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_classified_total",
			Help:      "Comments classified, by polarity or \"labels\" for topic buckets.",
		}, []string{"bucket"}),
		classifierErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_errors_total",
			Help:      "Comments the classification backend failed on.",
		}),
		backendReady: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_ready",
			Help:      "1 when the classification backend initialized, 0 when degraded.",
		}, []string{"backend"}),
	}
	m.registry.MustRegister(
		m.reportsGenerated,
		m.reportDuration,
		m.recordsLoaded,
		m.recordIssues,
		m.commentsClassified,
		m.classifierErrors,
		m.backendReady,
	)
	return m
}

// Registry is what the HTTP handler gathers from.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) ObserveReport(d time.Duration) {
	if m == nil {
		return
	}
	m.reportsGenerated.Inc()
	m.reportDuration.Observe(d.Seconds())
}

func (m *Manager) AddRecordsLoaded(n int) {
	if m == nil {
		return
	}
	m.recordsLoaded.Add(float64(n))
}

func (m *Manager) IncRecordIssue(kind string) {
	if m == nil {
		return
	}
	m.recordIssues.WithLabelValues(kind).Inc()
}

// IncClassified counts one classified comment. Topic labels are an open
// vocabulary, so label buckets share a single series.
func (m *Manager) IncClassified(b types.Bucket) {
	if m == nil {
		return
	}
	m.commentsClassified.WithLabelValues(bucketLabel(b)).Inc()
}

func bucketLabel(b types.Bucket) string {
	if b.Kind == types.PolarityBucket {
		return b.Polarity
	}
	return string(types.LabelBucket)
}

func (m *Manager) IncClassifierError() {
	if m == nil {
		return
	}
	m.classifierErrors.Inc()
}

func (m *Manager) SetBackendReady(name string, ready bool) {
	if m == nil {
		return
	}
	v := 0.0
	if ready {
		v = 1
	}
	m.backendReady.WithLabelValues(name).Set(v)
}
