package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sharp_lines"

var (
	// UpstreamRequests counts market-data fetches by category and result (ok, error)
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Market-data provider requests by category and result.",
	}, []string{"category", "result"})

	// UpstreamLatency observes market-data fetch latency
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Market-data provider request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"category"})

	// LiveCacheLookups counts live cache lookups by category and result (hit, miss)
	LiveCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_cache_lookups_total",
		Help:      "Live query cache lookups by category and result.",
	}, []string{"category", "result"})

	// SnapshotReads counts snapshot store reads by operation and status
	SnapshotReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_reads_total",
		Help:      "Snapshot store reads by operation and status.",
	}, []string{"op", "status"})

	// SnapshotCorruptEntries counts persisted entries skipped as unreadable
	SnapshotCorruptEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_corrupt_entries_total",
		Help:      "Persisted snapshot entries treated as absent because they could not be parsed.",
	})

	// SnapshotWrites counts snapshot writes by category, label and result
	SnapshotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_writes_total",
		Help:      "Snapshot writes by category, label and result.",
	}, []string{"category", "label", "result"})

	// IngestionRuns counts ingestion runs by label and result (ok, partial, skipped)
	IngestionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingestion_runs_total",
		Help:      "Scheduled ingestion runs by label and result.",
	}, []string{"label", "result"})

	// SharpSignals counts classified signals by category and type (rlm_side, rlm_total, steam)
	SharpSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sharp_signals_total",
		Help:      "Sharp-action signals detected during ingestion.",
	}, []string{"category", "type"})

	// AlertsPublished counts alerts published to Kafka by category
	AlertsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_published_total",
		Help:      "Sharp alerts published to the message bus.",
	}, []string{"category"})
)
