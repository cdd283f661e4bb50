// Package liveness tracks chunk server heartbeats. A chunk server is
// considered active as long as it pinged within the registry's TTL;
// pkg/replication only ever targets active servers, and pkg/gateway's
// GET /api/servers only lists them. Ports
// ccfs-commons::ChunkServer::is_active, including its 6-second default.
package liveness

import (
	"sort"
	"sync"
	"time"

	"github.com/ccfs/ccfs/pkg/ccfserr"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/types"
)

// DefaultTTL is how long a chunk server is considered active after its
// last ping, matching the original's is_active check.
const DefaultTTL = 6 * time.Second

// Registry tracks every chunk server CCFS has ever heard from.
type Registry struct {
	mu      sync.RWMutex
	records map[string]types.ChunkServerRecord
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry returns a registry using DefaultTTL.
func NewRegistry() *Registry {
	return NewRegistryWithTTL(DefaultTTL)
}

// NewRegistryWithTTL returns a registry using a custom TTL, for tests
// that want to exercise expiry without sleeping.
func NewRegistryWithTTL(ttl time.Duration) *Registry {
	return &Registry{
		records: make(map[string]types.ChunkServerRecord),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Ping registers serverID as alive at address, creating the record on
// first contact. Matches POST /api/ping's entry-or-update behavior.
func (r *Registry) Ping(serverID, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[serverID] = types.ChunkServerRecord{
		ServerID:        serverID,
		Address:         address,
		LastHeartbeatAt: r.now(),
	}
	r.refreshMetrics()
}

// Lookup returns the record for serverID, if any.
func (r *Registry) Lookup(serverID string) (types.ChunkServerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[serverID]
	if !ok {
		return types.ChunkServerRecord{}, ccfserr.New(ccfserr.KindNotFound, "chunk server not found: "+serverID)
	}
	return rec, nil
}

// Active returns every chunk server whose last heartbeat is within the
// registry's TTL, sorted by server ID for deterministic responses.
func (r *Registry) Active() []types.ChunkServerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	out := make([]types.ChunkServerRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Active(now, r.ttl) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServerID < out[j].ServerID })
	return out
}

// All returns every chunk server ever seen, active or not.
func (r *Registry) All() []types.ChunkServerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ChunkServerRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServerID < out[j].ServerID })
	return out
}

func (r *Registry) refreshMetrics() {
	now := r.now()
	active := 0
	for _, rec := range r.records {
		if rec.Active(now, r.ttl) {
			active++
		}
	}
	metrics.ChunkServersActive.Set(float64(active))
	metrics.ChunkServersTotal.Set(float64(len(r.records)))
}
