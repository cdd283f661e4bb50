// Package collector periodically refreshes the Raft/liveness gauges
// pkg/metrics exposes on /metrics. Ports cuemby/warren's
// pkg/manager/metrics_collector.go, generalized from container-cluster
// counters (nodes/services/containers/secrets/volumes) to CCFS's own
// (Raft state, active chunk servers, tracked files/chunks) — most of
// which the state machine and liveness registry already keep current
// on their own write paths. This collector sets the gauges nothing else
// touches (Raft leadership, indices and peer count) and resamples the
// liveness and tree gauges on the same cadence.
package collector

import (
	"time"

	"github.com/ccfs/ccfs/pkg/liveness"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/raftnode"
)

// DefaultInterval matches the teacher's 15-second collection cadence.
const DefaultInterval = 15 * time.Second

// Collector refreshes Prometheus gauges that are cheapest to sample on
// a timer rather than update inline on every write.
type Collector struct {
	node     *raftnode.Node
	liveness *liveness.Registry
	interval time.Duration
	stopCh   chan struct{}
}

// New builds a Collector for node and registry.
func New(node *raftnode.Node, registry *liveness.Registry) *Collector {
	return &Collector{
		node:     node,
		liveness: registry,
		interval: DefaultInterval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting on a ticker, sampling once immediately.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop ends the collection loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectRaftMetrics()
	c.collectLivenessMetrics()
	c.collectTreeMetrics()
}

func (c *Collector) collectRaftMetrics() {
	stats := c.node.Stats()
	if stats.IsLeaderVal {
		metrics.RaftLeader.Set(1)
	} else {
		metrics.RaftLeader.Set(0)
	}
	metrics.RaftLogIndex.Set(float64(stats.LastIndex))
	metrics.RaftAppliedIndex.Set(float64(stats.AppliedIdx))
	metrics.RaftPeers.Set(float64(stats.PeersTotal))
}

// collectLivenessMetrics resamples the liveness gauges. Registry.Ping
// already updates ChunkServersActive/ChunkServersTotal on every ping, but the
// active set decays purely with the passage of time (a server that
// stops pinging ages out without any write ever happening again), so
// this resamples it on the same cadence as the rest of the collector.
func (c *Collector) collectLivenessMetrics() {
	active := c.liveness.Active()
	all := c.liveness.All()
	metrics.ChunkServersActive.Set(float64(len(active)))
	metrics.ChunkServersTotal.Set(float64(len(all)))
}

// collectTreeMetrics resamples FilesTotal/ChunksTotal for the same
// reason: statemachine.Apply already sets them on every write, but a
// coordinator that has been idle since its last write still wants a
// current reading.
func (c *Collector) collectTreeMetrics() {
	files, chunks := c.node.FSM().Stats()
	metrics.FilesTotal.Set(float64(files))
	metrics.ChunksTotal.Set(float64(chunks))
}
