package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cppbind_parse_seconds",
		Help:    "Time spent turning one input file into an entity tree.",
		Buckets: prometheus.DefBuckets,
	}, []string{"frontend"})

	GenerateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cppbind_generate_seconds",
		Help:    "Time spent on one complete generation run.",
		Buckets: prometheus.DefBuckets,
	})

	ClassesBoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cppbind_classes_bound_total",
		Help: "Total number of classes registered across generation runs.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cppbind_diagnostics_total",
		Help: "Total number of diagnostics reported, by kind.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cppbind_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cppbind_runs_total",
		Help: "Total number of generation runs, by result.",
	}, []string{"result"})
)
