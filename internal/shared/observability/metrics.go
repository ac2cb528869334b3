package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dupguard_stage_seconds",
		Help:    "Time spent in each scan stage (resolve, collect, detect).",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dupguard_scan_seconds",
		Help:    "End-to-end duration of a duplicate scan.",
		Buckets: prometheus.DefBuckets,
	})

	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupguard_scans_total",
		Help: "Total number of scans by outcome (clean, duplicates, error).",
	}, []string{"outcome"})

	FilesCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupguard_files_collected_total",
		Help: "Total number of source files collected across all scans.",
	})

	ModulesScanned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dupguard_modules_scanned",
		Help: "Number of modules in the most recent scan closure.",
	})

	DuplicateGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dupguard_duplicate_groups",
		Help: "Number of duplicate base filenames found by the most recent scan.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupguard_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
