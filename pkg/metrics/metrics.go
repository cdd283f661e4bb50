package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Raft metrics
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_raft_is_leader",
			Help: "Whether this coordinator is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_raft_peers_total",
			Help: "Total number of Raft peers in the cluster",
		},
	)

	RaftLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_raft_log_index",
			Help: "Current Raft log index",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_raft_applied_index",
			Help: "Last applied Raft log index",
		},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ccfs_raft_apply_duration_seconds",
			Help:    "Time taken to apply a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Gateway metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccfs_api_requests_total",
			Help: "Total number of gateway requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ccfs_api_request_duration_seconds",
			Help:    "Gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Liveness registry metrics
	ChunkServersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_chunk_servers_active",
			Help: "Number of chunk servers considered active by the liveness registry",
		},
	)

	ChunkServersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_chunk_servers_total",
			Help: "Total number of chunk servers ever seen by the liveness registry",
		},
	)

	// Tree / index metrics
	FilesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_files_total",
			Help: "Total number of files tracked by the state machine",
		},
	)

	ChunksTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_chunks_total",
			Help: "Total number of chunks tracked by the chunk index",
		},
	)

	// Replication controller metrics
	ReplicationTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ccfs_replication_tick_duration_seconds",
			Help:    "Time taken for a replication controller scan in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReplicationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccfs_replication_requests_total",
			Help: "Total number of replicate RPCs dispatched by outcome",
		},
		[]string{"outcome"},
	)

	ReplicationDeficit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccfs_replication_deficit_chunks",
			Help: "Number of chunks below the target replica count as of the last tick",
		},
	)

	// Snapshot job metrics
	SnapshotWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ccfs_snapshot_write_duration_seconds",
			Help:    "Time taken to write a local tree snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccfs_snapshot_writes_total",
			Help: "Total number of local snapshot writes by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(RaftApplyDuration)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(ChunkServersActive)
	prometheus.MustRegister(ChunkServersTotal)
	prometheus.MustRegister(FilesTotal)
	prometheus.MustRegister(ChunksTotal)
	prometheus.MustRegister(ReplicationTickDuration)
	prometheus.MustRegister(ReplicationRequestsTotal)
	prometheus.MustRegister(ReplicationDeficit)
	prometheus.MustRegister(SnapshotWriteDuration)
	prometheus.MustRegister(SnapshotWritesTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
