// Package raftnode wraps hashicorp/raft into the single entry point every
// other CCFS component uses to read or mutate cluster metadata: Bootstrap
// a new cluster, Join an existing one, submit writes through ClientWrite,
// and take linearizable reads through ClientRead. It owns the FSM, the
// BoltDB-backed log/stable stores and the file-based snapshot store —
// everything Raft itself needs to stay durable across restarts.
package raftnode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/ccfs/ccfs/pkg/ccfserr"
	"github.com/ccfs/ccfs/pkg/log"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/statemachine"
	"github.com/ccfs/ccfs/pkg/types"
)

// Config configures a Node's Raft transport and on-disk layout.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string

	// ApplyTimeout bounds ClientWrite; 0 selects a 5s default.
	ApplyTimeout time.Duration
}

// Node is one coordinator's Raft-backed metadata endpoint.
type Node struct {
	cfg  Config
	raft *raft.Raft
	fsm  *statemachine.FSM
}

// New constructs a Node and opens its on-disk log/stable/snapshot
// stores, but does not start participating in a cluster: call Bootstrap
// or Join next.
func New(cfg Config) (*Node, error) {
	if cfg.ApplyTimeout == 0 {
		cfg.ApplyTimeout = 5 * time.Second
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	n := &Node{cfg: cfg, fsm: statemachine.New()}

	raftCfg := raft.DefaultConfig()
	raftCfg.LocalID = raft.ServerID(cfg.NodeID)
	raftCfg.HeartbeatTimeout = 150 * time.Millisecond
	raftCfg.ElectionTimeout = 150 * time.Millisecond
	raftCfg.CommitTimeout = 50 * time.Millisecond
	raftCfg.LeaderLeaseTimeout = 100 * time.Millisecond

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("create stable store: %w", err)
	}

	r, err := raft.NewRaft(raftCfg, n.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, fmt.Errorf("create raft: %w", err)
	}
	n.raft = r
	return n, nil
}

// Bootstrap forms a brand new single-node cluster with this node as its
// only voter.
func (n *Node) Bootstrap() error {
	cfg := raft.Configuration{
		Servers: []raft.Server{
			{ID: raft.ServerID(n.cfg.NodeID), Address: raft.ServerAddress(n.cfg.BindAddr)},
		},
	}
	future := n.raft.BootstrapCluster(cfg)
	if err := future.Error(); err != nil {
		return ccfserr.Wrap(ccfserr.KindInternal, err, "bootstrap cluster")
	}
	log.WithComponent("raftnode").Info().Str("node_id", n.cfg.NodeID).Msg("bootstrapped cluster")
	return nil
}

// Join starts this node's Raft instance without bootstrapping; the caller
// is expected to already be a voter added by the leader (see AddVoter on
// the leader side), or to become one by asking the leader via the
// cluster transport's join handshake.
func (n *Node) Join() error {
	log.WithComponent("raftnode").Info().Str("node_id", n.cfg.NodeID).Msg("started raft, waiting to be added as voter")
	return nil
}

// AddVoter adds a new server to the cluster. Must be called on the
// leader.
func (n *Node) AddVoter(nodeID, address string) error {
	if !n.IsLeader() {
		return ccfserr.NotLeader(n.LeaderID())
	}
	future := n.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(address), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return ccfserr.Wrap(ccfserr.KindInternal, err, "add voter")
	}
	return nil
}

// RemoveServer removes a server from the cluster. Must be called on the
// leader.
func (n *Node) RemoveServer(nodeID string) error {
	if !n.IsLeader() {
		return ccfserr.NotLeader(n.LeaderID())
	}
	future := n.raft.RemoveServer(raft.ServerID(nodeID), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return ccfserr.Wrap(ccfserr.KindInternal, err, "remove server")
	}
	return nil
}

// IsLeader reports whether this node currently holds Raft leadership.
func (n *Node) IsLeader() bool {
	return n.raft.State() == raft.Leader
}

// LeaderAddr returns the Raft transport bind address of the current
// leader, or "". Only meaningful within the Raft transport itself
// (AddVoter/RemoveServer); HTTP callers need the leader's gateway
// address instead, which LeaderID lets them look up via pkg/cluster.
func (n *Node) LeaderAddr() string {
	addr, _ := n.raft.LeaderWithID()
	return string(addr)
}

// LeaderID returns the Raft server ID of the current leader, or "" if
// none is known. pkg/gateway resolves this into a dialable HTTP address
// through the cluster directory before redirecting a client.
func (n *Node) LeaderID() string {
	_, id := n.raft.LeaderWithID()
	return string(id)
}

// ClientWrite submits req to the Raft log and blocks until it is applied,
// returning the state machine's response. Fails with KindNotLeader if
// this node isn't the leader; callers (pkg/gateway) turn that into a
// redirect to the leader identified by LeaderID.
func (n *Node) ClientWrite(req types.ClientRequest) (types.ClientResponse, error) {
	if !n.IsLeader() {
		return types.ClientResponse{}, ccfserr.NotLeader(n.LeaderID())
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RaftApplyDuration)

	data, err := json.Marshal(req)
	if err != nil {
		return types.ClientResponse{}, ccfserr.Wrap(ccfserr.KindInternal, err, "marshal client request")
	}

	future := n.raft.Apply(data, n.cfg.ApplyTimeout)
	if err := future.Error(); err != nil {
		if errors.Is(err, raft.ErrNotLeader) {
			return types.ClientResponse{}, ccfserr.NotLeader(n.LeaderID())
		}
		return types.ClientResponse{}, ccfserr.Wrap(ccfserr.KindUnavailable, err, "apply raft log entry")
	}
	resp, ok := future.Response().(types.ClientResponse)
	if !ok {
		return types.ClientResponse{}, ccfserr.New(ccfserr.KindInternal, "unexpected apply response type")
	}
	if resp.Error != "" {
		return resp, ccfserr.New(resp.Kind, resp.Error)
	}
	return resp, nil
}

// ClientRead issues a Raft barrier to guarantee the local FSM reflects
// every write committed before this call returns, then runs fn against
// it. Use for linearizable reads; a stale read can simply call FSM
// directly. On a follower, Barrier fails with raft.ErrNotLeader, which
// is surfaced as KindNotLeader so read-only endpoints redirect (307)
// instead of reporting themselves unavailable (503).
func (n *Node) ClientRead(fn func(*statemachine.FSM) error) error {
	if err := n.raft.Barrier(n.cfg.ApplyTimeout).Error(); err != nil {
		if errors.Is(err, raft.ErrNotLeader) {
			return ccfserr.NotLeader(n.LeaderID())
		}
		return ccfserr.Wrap(ccfserr.KindUnavailable, err, "raft barrier")
	}
	return fn(n.fsm)
}

// FSM returns the node's state machine for stale (non-linearizable)
// reads — used by handlers that don't need the barrier, like metrics
// collection.
func (n *Node) FSM() *statemachine.FSM { return n.fsm }

// Stats reports the Raft fields pkg/collector publishes as gauges.
type Stats struct {
	State       string
	Leader      string
	LastIndex   uint64
	AppliedIdx  uint64
	PeersTotal  int
	IsLeaderVal bool
}

// Stats snapshots the current Raft node state.
func (n *Node) Stats() Stats {
	s := Stats{
		State:       n.raft.State().String(),
		Leader:      n.LeaderAddr(),
		LastIndex:   n.raft.LastIndex(),
		AppliedIdx:  n.raft.AppliedIndex(),
		IsLeaderVal: n.IsLeader(),
	}
	if future := n.raft.GetConfiguration(); future.Error() == nil {
		s.PeersTotal = len(future.Configuration().Servers)
	}
	return s
}

// Shutdown stops Raft and waits for it to fully release its resources.
func (n *Node) Shutdown() error {
	future := n.raft.Shutdown()
	if err := future.Error(); err != nil {
		return ccfserr.Wrap(ccfserr.KindInternal, err, "shutdown raft")
	}
	return nil
}
