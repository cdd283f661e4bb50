package replication

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccfs/ccfs/pkg/liveness"
	"github.com/ccfs/ccfs/pkg/statemachine"
	"github.com/ccfs/ccfs/pkg/tree"
	"github.com/ccfs/ccfs/pkg/types"
)

func applyRequest(t *testing.T, fsm *statemachine.FSM, index uint64, req types.ClientRequest) {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	fsm.Apply(&raft.Log{Index: index, Data: data})
}

type capturedRequest struct {
	chunkID  string
	fileID   string
	toServer string
}

func TestTickDispatchesReplicationToUnderReplicatedChunk(t *testing.T) {
	var mu sync.Mutex
	var captured []capturedRequest

	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		captured = append(captured, capturedRequest{
			chunkID:  r.Header.Get("x-ccfs-chunk-id"),
			fileID:   r.Header.Get("x-ccfs-file-id"),
			toServer: r.Header.Get("x-ccfs-server-url"),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer src.Close()

	fsm := statemachine.New()
	applyRequest(t, fsm, 1, types.ClientRequest{
		ClientID: "c1", Serial: 1, Action: types.ActionAddPath,
		AddPath: &types.AddPathAction{
			TargetPath: tree.ROOT_DIR, Name: "data.bin", FileID: "file-1",
			ChunkIDs: []string{"chunk-a"}, Size: 1024,
		},
	})
	applyRequest(t, fsm, 2, types.ClientRequest{
		ClientID: "c1", Serial: 2, Action: types.ActionUploadCompleted,
		Upload: &types.UploadCompletedAction{
			Location: types.ChunkLocation{ChunkID: "chunk-a", FileID: "file-1", ServerID: "srv-src"},
		},
	})

	registry := liveness.NewRegistry()
	registry.Ping("srv-src", src.URL)
	registry.Ping("srv-dst", "http://127.0.0.1:1") // unreachable, but a valid replication target

	ctrl := NewController(fsm, registry)
	ctrl.TargetReplicas = 2
	ctrl.tick()

	// Give the synchronous tick's outbound request time to land (tick
	// itself blocks on the HTTP call, so this is just a safety margin).
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, captured, 1)
	assert.Equal(t, "chunk-a", captured[0].chunkID)
	assert.Equal(t, "file-1", captured[0].fileID)
}

func TestTickSkipsChunksAlreadyAtTarget(t *testing.T) {
	fsm := statemachine.New()
	applyRequest(t, fsm, 1, types.ClientRequest{
		ClientID: "c1", Serial: 1, Action: types.ActionAddPath,
		AddPath: &types.AddPathAction{
			TargetPath: tree.ROOT_DIR, Name: "data.bin", FileID: "file-1",
			ChunkIDs: []string{"chunk-a"}, Size: 1024,
		},
	})
	applyRequest(t, fsm, 2, types.ClientRequest{
		ClientID: "c1", Serial: 2, Action: types.ActionUploadCompleted,
		Upload: &types.UploadCompletedAction{
			Location: types.ChunkLocation{ChunkID: "chunk-a", FileID: "file-1", ServerID: "srv-1"},
		},
	})

	registry := liveness.NewRegistry()
	registry.Ping("srv-1", "http://127.0.0.1:1")

	ctrl := NewController(fsm, registry)
	ctrl.TargetReplicas = 1
	// Must not panic or dispatch anything: already at target.
	ctrl.tick()
}
