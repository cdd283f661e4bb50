// Package statemachine implements the Raft FSM that owns CCFS's domain
// state: the namespace tree, the file index and the chunk index. It
// mirrors the original metadata-server's CCFSStateMachine, but keeps the
// state machine's pointer semantics instead of the copy-then-write-back
// pattern the Rust borrow checker forced: completion bookkeeping mutates
// the tree node in place rather than rebuilding a detached copy.
package statemachine

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/hashicorp/raft"

	"github.com/ccfs/ccfs/pkg/ccfserr"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/tree"
	"github.com/ccfs/ccfs/pkg/types"
)

// State is the domain data FSM.Snapshot/Restore persists as one unit.
type State struct {
	Tree *tree.Node
	// FileIndex maps a file ID to its absolute path in Tree, so upload
	// completion and chunk lookups don't need a full tree walk.
	FileIndex map[string]string
	// ChunkIndex maps a chunk ID to the set of chunk servers known to
	// hold a replica, keyed by server ID.
	ChunkIndex map[string]map[string]types.ChunkLocation
}

func newState() State {
	return State{
		Tree:       tree.NewRoot(),
		FileIndex:  make(map[string]string),
		ChunkIndex: make(map[string]map[string]types.ChunkLocation),
	}
}

type clientRecord struct {
	Serial uint64
	Resp   types.ClientResponse
}

// FSM is the Raft-applied state machine for one CCFS coordinator. All
// reads and writes go through it so a single mutex orders every mutation
// the same way on every node.
type FSM struct {
	mu     sync.RWMutex
	state  State
	serial map[string]clientRecord
}

// New returns an FSM with an empty namespace rooted at "/".
func New() *FSM {
	return &FSM{
		state:  newState(),
		serial: make(map[string]clientRecord),
	}
}

// Apply implements raft.FSM. It is only ever invoked by the Raft library
// with entries already committed to a quorum, in strict log order.
func (f *FSM) Apply(l *raft.Log) interface{} {
	var req types.ClientRequest
	if err := json.Unmarshal(l.Data, &req); err != nil {
		return types.ClientResponse{Error: err.Error(), Kind: ccfserr.KindInternal}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if rec, ok := f.serial[req.ClientID]; ok && rec.Serial == req.Serial {
		return rec.Resp
	}

	var resp types.ClientResponse
	switch req.Action {
	case types.ActionAddPath:
		resp = f.applyAddPath(req.AddPath)
	case types.ActionUploadCompleted:
		resp = f.applyUploadCompleted(req.Upload)
	default:
		resp = types.ClientResponse{Error: "unknown action: " + string(req.Action), Kind: ccfserr.KindValidation}
	}

	f.serial[req.ClientID] = clientRecord{Serial: req.Serial, Resp: resp}
	metrics.FilesTotal.Set(float64(len(f.state.FileIndex)))
	metrics.ChunksTotal.Set(float64(len(f.state.ChunkIndex)))
	return resp
}

func (f *FSM) applyAddPath(a *types.AddPathAction) types.ClientResponse {
	if a == nil {
		return types.ClientResponse{Error: "missing add_path payload", Kind: ccfserr.KindValidation}
	}
	dir, err := f.state.Tree.Traverse(a.TargetPath)
	if err != nil {
		return types.ClientResponse{Error: err.Error(), Kind: ccfserr.KindOf(err)}
	}
	if a.IsDir {
		if err := dir.InsertDir(a.Name); err != nil {
			return types.ClientResponse{Error: err.Error(), Kind: ccfserr.KindOf(err)}
		}
		return types.ClientResponse{}
	}
	if err := dir.InsertFile(a.Name, a.FileID, uint64(a.Size), a.ChunkIDs); err != nil {
		return types.ClientResponse{Error: err.Error(), Kind: ccfserr.KindOf(err)}
	}
	f.state.FileIndex[a.FileID] = joinPath(a.TargetPath, a.Name)
	return types.ClientResponse{FileID: a.FileID}
}

// applyUploadCompleted records one chunk replica. The file's completed
// chunk counter only advances the first time a chunk is heard from,
// matching the original metadata-server: re-ack'ing a chunk server that
// has already reported, or a second replica of the same chunk, never
// double-counts.
func (f *FSM) applyUploadCompleted(a *types.UploadCompletedAction) types.ClientResponse {
	if a == nil {
		return types.ClientResponse{Error: "missing upload_completed payload", Kind: ccfserr.KindValidation}
	}
	loc := a.Location
	replicas, ok := f.state.ChunkIndex[loc.ChunkID]
	if !ok {
		replicas = make(map[string]types.ChunkLocation)
		f.state.ChunkIndex[loc.ChunkID] = replicas
	}
	firstReplica := len(replicas) == 0
	replicas[loc.ServerID] = loc

	if firstReplica {
		path, ok := f.state.FileIndex[loc.FileID]
		if !ok {
			return types.ClientResponse{Error: "file not found: " + loc.FileID, Kind: ccfserr.KindNotFound}
		}
		file, err := f.state.Tree.Traverse(path)
		if err != nil {
			return types.ClientResponse{Error: err.Error(), Kind: ccfserr.KindOf(err)}
		}
		file.CompletedCount++
		if file.CompletedCount == len(file.ChunkIDs) {
			file.Status = tree.FileStatusCompleted
		}
	}
	return types.ClientResponse{FileID: loc.FileID}
}

func joinPath(dir, name string) string {
	if dir == tree.ROOT_DIR {
		return tree.ROOT_DIR + name
	}
	return dir + "/" + name
}

// GetNode returns the tree node at path, under a read lock. Callers must
// not mutate the returned node.
func (f *FSM) GetNode(path string) (*tree.Node, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.Tree.Traverse(path)
}

// ListReplicas returns the known replica locations for every chunk of
// fileID, in chunk order, mirroring GET /api/chunks/file/{file_id}.
func (f *FSM) ListReplicas(fileID string) ([][]types.ChunkLocation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	path, ok := f.state.FileIndex[fileID]
	if !ok {
		return nil, ccfserr.New(ccfserr.KindNotFound, "file not found: "+fileID)
	}
	file, err := f.state.Tree.Traverse(path)
	if err != nil {
		return nil, err
	}
	chunkIDs, err := file.GetChunks()
	if err != nil {
		return nil, err
	}
	out := make([][]types.ChunkLocation, 0, len(chunkIDs))
	for _, chunkID := range chunkIDs {
		replicas := f.state.ChunkIndex[chunkID]
		locs := make([]types.ChunkLocation, 0, len(replicas))
		for _, loc := range replicas {
			locs = append(locs, loc)
		}
		out = append(out, locs)
	}
	return out, nil
}

// ChunkReplicas returns, for fileID, the set of known replica locations
// keyed by chunk ID. Unlike ListReplicas it exposes the chunk ID each
// replica set belongs to, which pkg/replication needs to tag its
// replicate RPCs.
func (f *FSM) ChunkReplicas(fileID string) (map[string][]types.ChunkLocation, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	path, ok := f.state.FileIndex[fileID]
	if !ok {
		return nil, ccfserr.New(ccfserr.KindNotFound, "file not found: "+fileID)
	}
	file, err := f.state.Tree.Traverse(path)
	if err != nil {
		return nil, err
	}
	chunkIDs, err := file.GetChunks()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]types.ChunkLocation, len(chunkIDs))
	for _, chunkID := range chunkIDs {
		replicas := f.state.ChunkIndex[chunkID]
		locs := make([]types.ChunkLocation, 0, len(replicas))
		for _, loc := range replicas {
			locs = append(locs, loc)
		}
		out[chunkID] = locs
	}
	return out, nil
}

// CloneTree returns a deep copy of the current namespace tree, safe for
// a caller to serialize without holding the FSM lock. Used by
// pkg/snapshotjob for its local cold-start snapshot, a mechanism
// entirely separate from Raft's own FSM.Snapshot/Restore.
func (f *FSM) CloneTree() (*tree.Node, error) {
	f.mu.RLock()
	data, err := json.Marshal(f.state.Tree)
	f.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	var clone tree.Node
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Stats reports the file and chunk counts pkg/collector publishes as
// gauges.
func (f *FSM) Stats() (files, chunks int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.state.FileIndex), len(f.state.ChunkIndex)
}

// snapshotPayload is what Snapshot/Restore serialize: the domain state
// plus the dedup cache, so a restored FSM still recognizes a replayed
// client request as already applied.
type snapshotPayload struct {
	State  State
	Serial map[string]clientRecord
}

type fsmSnapshot struct {
	payload snapshotPayload
}

// Snapshot implements raft.FSM. It deep-copies the state via a JSON
// round trip so Persist can run without holding the FSM lock.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := json.Marshal(snapshotPayload{State: f.state, Serial: f.serial})
	if err != nil {
		return nil, err
	}
	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &fsmSnapshot{payload: payload}, nil
}

// Restore implements raft.FSM.
func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var payload snapshotPayload
	if err := json.NewDecoder(rc).Decode(&payload); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = payload.State
	f.serial = payload.Serial
	if f.serial == nil {
		f.serial = make(map[string]clientRecord)
	}
	return nil
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s.payload); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *fsmSnapshot) Release() {}
