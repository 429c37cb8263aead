package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "importguard_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importguard_files_checked_total",
		Help: "Total number of candidate files analyzed.",
	})

	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importguard_issues_total",
		Help: "Total number of issue records emitted, by severity and kind.",
	}, []string{"severity", "kind"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "importguard_run_seconds",
		Help:    "Wall time of a full validation pass.",
		Buckets: prometheus.DefBuckets,
	})

	LastRunBlocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importguard_last_run_blocked",
		Help: "1 when the most recent run found critical issues, 0 otherwise.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importguard_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
