package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "utoipauto_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "utoipauto_files_scanned_total",
		Help: "Total number of source files read and parsed by the locator.",
	})

	DiscoveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "utoipauto_discovery_seconds",
		Help:    "Time spent on a complete discovery run.",
		Buckets: prometheus.DefBuckets,
	})

	DiscoveredItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "utoipauto_discovered_items_total",
		Help: "Classified declarations by kind.",
	}, []string{"kind"})

	DiscoveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "utoipauto_discovery_failures_total",
		Help: "Aborted discovery runs by error code.",
	}, []string{"code"})

	UnresolvedImports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "utoipauto_unresolved_imports_total",
		Help: "Generic arguments left unqualified because no import matched.",
	})

	LastRunItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "utoipauto_last_run_items",
		Help: "Entries in each output bucket after the last successful run.",
	}, []string{"bucket"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "utoipauto_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RediscoveryThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "utoipauto_rediscovery_throttled_total",
		Help: "Watch-triggered runs delayed by the rate limiter.",
	})

	HistoryWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "utoipauto_history_write_errors_total",
		Help: "Failed attempts to persist a run to the history store.",
	})
)
