// Package metrics collects counters about a planning pass in a private
// Prometheus registry. The registry can be dumped to a textfile for the node
// exporter's textfile collector.
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalogplan"

// Metrics defines the planner's monitoring metrics.
type Metrics struct {
	Registry *prometheus.Registry

	actionsTotal   *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
	decisionsTotal *prometheus.CounterVec
	lookupsTotal   *prometheus.CounterVec
	batchesTotal   *prometheus.CounterVec
	progress       *prometheus.GaugeVec
}

// New creates a metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		actionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "actions",
				Name:      "emitted_total",
				Help:      "Total number of actions written to action buffers",
			},
			[]string{"phase", "kind", "action"},
		),
		conflictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "verify",
				Name:      "conflicts_total",
				Help:      "Total number of catalog conflicts detected",
			},
			[]string{"kind", "conflict"},
		),
		decisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "verify",
				Name:      "decisions_total",
				Help:      "Total number of conflict decisions taken",
			},
			[]string{"decision"},
		),
		lookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "lookups_total",
				Help:      "Total number of catalog lookups by result",
			},
			[]string{"collection", "result"},
		),
		batchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "batches_total",
				Help:      "Total number of batches handed to the executor",
			},
			[]string{"phase"},
		),
		progress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "progress_ticks",
				Help:      "Progress ticks accumulated by the last pass",
			},
			[]string{"direction"},
		),
	}
}

// Lookup results.
const (
	LookupFound   = "found"
	LookupMissing = "missing"
	LookupError   = "error"
	LookupCached  = "cached"
)

// RecordActions counts n actions of one kind in one phase.
func (m *Metrics) RecordActions(phase, kind, action string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.actionsTotal.WithLabelValues(phase, kind, action).Add(float64(n))
}

// RecordConflict counts a detected conflict.
func (m *Metrics) RecordConflict(kind, conflict string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(kind, conflict).Inc()
}

// RecordDecision counts a conflict decision.
func (m *Metrics) RecordDecision(decision string) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(decision).Inc()
}

// RecordLookup counts a catalog lookup by result.
func (m *Metrics) RecordLookup(collection, result string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(collection, result).Inc()
}

// RecordBatch counts a batch handed to the executor.
func (m *Metrics) RecordBatch(phase string) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(phase).Inc()
}

// SetProgress records the progress total of a pass.
func (m *Metrics) SetProgress(direction string, ticks int) {
	if m == nil {
		return
	}
	m.progress.WithLabelValues(direction).Set(float64(ticks))
}

// WriteFile writes the registry in the text exposition format. The file is
// replaced atomically.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
