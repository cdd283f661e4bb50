package types

import (
	"time"

	"github.com/ccfs/ccfs/pkg/ccfserr"
)

// ChunkLocation identifies one replica of one chunk: the chunk it belongs
// to, the file it belongs to, and the chunk server holding the bytes.
type ChunkLocation struct {
	ChunkID  string
	FileID   string
	ServerID string
}

// ChunkServerRecord is what the liveness registry keeps per chunk server.
type ChunkServerRecord struct {
	ServerID        string
	Address         string
	LastHeartbeatAt time.Time
}

// Active reports whether the record's last heartbeat is within ttl of now.
func (r ChunkServerRecord) Active(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.LastHeartbeatAt) <= ttl
}

// ActionKind tags the variant of a ClientRequest's Action.
type ActionKind string

const (
	ActionAddPath          ActionKind = "add_path"
	ActionUploadCompleted  ActionKind = "upload_completed"
)

// AddPathAction creates a directory or registers a new file named Name
// inside the directory at TargetPath. TargetPath is resolved by the
// gateway (via tree.EvaluatePath) before the action is submitted to Raft,
// so the state machine only has to traverse and insert.
type AddPathAction struct {
	TargetPath string
	Name       string
	IsDir      bool
	FileID     string   // only set when IsDir is false
	ChunkIDs   []string // only set when IsDir is false
	Size       int64
}

// UploadCompletedAction records that one replica of one chunk finished
// uploading to a chunk server.
type UploadCompletedAction struct {
	Location ChunkLocation
}

// ClientRequest is the payload carried inside a Raft log entry. ClientID
// and Serial together make Apply idempotent: a request already seen for
// that (ClientID, Serial) pair replays its cached response instead of
// mutating state again.
type ClientRequest struct {
	ClientID string
	Serial   uint64
	Action   ActionKind
	AddPath  *AddPathAction         `json:",omitempty"`
	Upload   *UploadCompletedAction `json:",omitempty"`
}

// ClientResponse is what Apply produces for a ClientRequest. It is never
// itself an error value — apply is total, so failures are encoded as data
// and the caller (pkg/raftnode's ClientWrite) turns Error/Kind into a
// classified *ccfserr.Error once it has left the FSM's single mutex.
type ClientResponse struct {
	FileID string       `json:",omitempty"`
	Error  string       `json:",omitempty"`
	Kind   ccfserr.Kind `json:",omitempty"`
}
