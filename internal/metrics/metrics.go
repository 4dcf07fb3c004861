// Package metrics exposes Prometheus instrumentation for the query and
// placement paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts canvas queries, labeled by outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skein_queries_total",
			Help: "Total number of canvas queries processed",
		},
		[]string{"status"},
	)

	// PlacementsTotal counts document placements, labeled by outcome.
	PlacementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skein_placements_total",
			Help: "Total number of document placements processed",
		},
		[]string{"status"},
	)

	// SelectionSize observes how many nodes each query selected after
	// expansion.
	SelectionSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skein_selection_size_nodes",
			Help:    "Expanded selection size per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// HealRounds observes correction rounds per healing run.
	HealRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skein_heal_correction_rounds",
			Help:    "Correction rounds used per script healing run",
			Buckets: []float64{0, 1, 2, 3, 4},
		},
	)
)

// ObserveQuery records one query outcome.
func ObserveQuery(err error, selected int) {
	if err != nil {
		QueriesTotal.WithLabelValues("error").Inc()
		return
	}
	QueriesTotal.WithLabelValues("ok").Inc()
	SelectionSize.Observe(float64(selected))
}

// ObservePlacement records one placement outcome.
func ObservePlacement(err error) {
	if err != nil {
		PlacementsTotal.WithLabelValues("error").Inc()
		return
	}
	PlacementsTotal.WithLabelValues("ok").Inc()
}
