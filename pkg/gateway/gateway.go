// Package gateway is CCFS's external HTTP surface: the only component a
// chunk server or a CLI client talks to directly. It translates JSON
// requests into types.ClientRequest values submitted through
// pkg/raftnode, serves linearizable reads through the same node's
// ClientRead barrier, and otherwise redirects to the current leader.
// Ports the original metadata-server's routes/routes.rs handlers onto
// gorilla/mux, trading actix's Data<T> extractors for a Gateway struct
// holding its collaborators directly.
package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ccfs/ccfs/pkg/ccfserr"
	"github.com/ccfs/ccfs/pkg/cluster"
	"github.com/ccfs/ccfs/pkg/liveness"
	"github.com/ccfs/ccfs/pkg/log"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/raftnode"
	"github.com/ccfs/ccfs/pkg/statemachine"
	"github.com/ccfs/ccfs/pkg/tree"
	"github.com/ccfs/ccfs/pkg/types"
)

// Gateway wires the HTTP surface to the node's Raft client, the chunk
// server liveness registry and the inter-coordinator cluster directory.
type Gateway struct {
	node     *raftnode.Node
	liveness *liveness.Registry
	cluster  *cluster.Registry
}

// New builds a Gateway. cl may be nil if this node doesn't also
// serve /raft/ws (the handler is simply omitted).
func New(node *raftnode.Node, lv *liveness.Registry, cl *cluster.Registry) *Gateway {
	return &Gateway{node: node, liveness: lv, cluster: cl}
}

// Router builds the gorilla/mux router exposing every CCFS endpoint.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(g.instrument)

	r.HandleFunc("/api/servers", g.getServers).Methods(http.MethodGet)
	r.HandleFunc("/api/servers/{id}", g.getServer).Methods(http.MethodGet)
	r.HandleFunc("/api/ping", g.ping).Methods(http.MethodPost)
	r.HandleFunc("/api/files/upload", g.createFile).Methods(http.MethodPost)
	r.HandleFunc("/api/files", g.getFile).Methods(http.MethodGet)
	r.HandleFunc("/api/chunk/completed", g.chunkCompleted).Methods(http.MethodPost)
	r.HandleFunc("/api/chunks/file/{file_id}", g.getChunksForFile).Methods(http.MethodGet)

	if g.cluster != nil {
		r.HandleFunc("/raft/ws", g.cluster.Handler)
	}

	r.HandleFunc("/health", metrics.HealthHandler()).Methods(http.MethodGet)
	r.HandleFunc("/ready", metrics.ReadyHandler()).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

// instrument records request count/duration for every route, matching
// the teacher's pkg/metrics interceptor pattern generalized from gRPC
// unary interceptors to an HTTP middleware.
func (g *Gateway) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		timer.ObserveDurationVec(metrics.APIRequestDuration, r.Method)
		metrics.APIRequestsTotal.WithLabelValues(r.Method, http.StatusText(sw.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// getServers lists every chunk server the liveness registry currently
// considers active, mirroring GET /servers's is_active filter.
func (g *Gateway) getServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.liveness.Active())
}

// getServer returns one chunk server's record by ID.
func (g *Gateway) getServer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := g.liveness.Lookup(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ping registers or refreshes a chunk server's heartbeat. Headers
// mirror the original's ChunkServer payload without requiring the
// chunk server to send a JSON body at all.
func (g *Gateway) ping(w http.ResponseWriter, r *http.Request) {
	serverID := r.Header.Get("x-ccfs-chunk-server-id")
	address := r.Header.Get("x-ccfs-chunk-server-address")
	if serverID == "" || address == "" {
		writeError(w, ccfserr.New(ccfserr.KindValidation, "missing chunk server id/address headers"))
		return
	}
	g.liveness.Ping(serverID, address)
	w.WriteHeader(http.StatusOK)
}

// createFileRequest mirrors spec.md's TreeNode JSON body: a name plus a
// file_info discriminated union, one of Directory (an empty children map
// on creation) or File (id/size/chunk_ids). Exactly one of Directory or
// File must be set.
type createFileRequest struct {
	Name     string       `json:"name"`
	FileInfo fileInfoBody `json:"file_info"`
}

type fileInfoBody struct {
	Directory *directoryInfoBody `json:"Directory,omitempty"`
	File      *fileInfoDetails   `json:"File,omitempty"`
}

// directoryInfoBody's children are never populated by a client request —
// a created directory always starts empty — but the field round-trips
// the shape GET /api/files returns.
type directoryInfoBody struct {
	Children map[string]json.RawMessage `json:"children,omitempty"`
}

type fileInfoDetails struct {
	FileID   string   `json:"file_id,omitempty"`
	Size     int64    `json:"size,omitempty"`
	ChunkIDs []string `json:"chunk_ids,omitempty"`
}

// createFile registers a directory or a new file under the directory
// named by the "path" query parameter (root if absent), matching
// POST /files/upload.
func (g *Gateway) createFile(w http.ResponseWriter, r *http.Request) {
	var body createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, ccfserr.Wrap(ccfserr.KindValidation, err, "decode create file request"))
		return
	}
	if body.Name == "" {
		writeError(w, ccfserr.New(ccfserr.KindValidation, "name is required"))
		return
	}
	if (body.FileInfo.Directory == nil) == (body.FileInfo.File == nil) {
		writeError(w, ccfserr.New(ccfserr.KindValidation, "file_info must set exactly one of Directory or File"))
		return
	}

	targetPath, err := g.evaluateQueryPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	action := &types.AddPathAction{
		TargetPath: targetPath,
		Name:       body.Name,
		IsDir:      body.FileInfo.Directory != nil,
	}
	if file := body.FileInfo.File; file != nil {
		action.FileID = file.FileID
		action.ChunkIDs = file.ChunkIDs
		action.Size = file.Size
	}

	resp, err := g.node.ClientWrite(types.ClientRequest{
		ClientID: clientID(r),
		Serial:   serial(r),
		Action:   types.ActionAddPath,
		AddPath:  action,
	})
	if err != nil {
		g.writeWriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// getFile returns the tree node at the "path" query parameter (root if
// absent), matching GET /files.
func (g *Gateway) getFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	var node *tree.Node
	err := g.node.ClientRead(func(fsm *statemachine.FSM) error {
		var err error
		node, err = fsm.GetNode(path)
		return err
	})
	if err != nil {
		g.writeWriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type chunkCompletedRequest struct {
	ChunkID  string `json:"chunk_id"`
	FileID   string `json:"file_id"`
	ServerID string `json:"server_id"`
}

// chunkCompleted records one chunk server's completed replica of one
// chunk, matching POST /chunk/completed.
func (g *Gateway) chunkCompleted(w http.ResponseWriter, r *http.Request) {
	var body chunkCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, ccfserr.Wrap(ccfserr.KindValidation, err, "decode chunk completed request"))
		return
	}
	if body.ChunkID == "" || body.FileID == "" || body.ServerID == "" {
		writeError(w, ccfserr.New(ccfserr.KindValidation, "chunk_id, file_id and server_id are required"))
		return
	}

	resp, err := g.node.ClientWrite(types.ClientRequest{
		ClientID: clientID(r),
		Serial:   serial(r),
		Action:   types.ActionUploadCompleted,
		Upload: &types.UploadCompletedAction{
			Location: types.ChunkLocation{
				ChunkID:  body.ChunkID,
				FileID:   body.FileID,
				ServerID: body.ServerID,
			},
		},
	})
	if err != nil {
		g.writeWriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// getChunksForFile lists the known replica locations of every chunk of
// file_id, in chunk order, matching GET /chunks/file/{file_id}.
func (g *Gateway) getChunksForFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["file_id"]
	var replicas [][]types.ChunkLocation
	err := g.node.ClientRead(func(fsm *statemachine.FSM) error {
		var err error
		replicas, err = fsm.ListReplicas(fileID)
		return err
	})
	if err != nil {
		g.writeWriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, replicas)
}

// evaluateQueryPath resolves the "path" query parameter against the
// current tree root, mirroring the original's evaluate_path(ROOT_DIR,
// &tree, path) call made before every mutation.
func (g *Gateway) evaluateQueryPath(r *http.Request) (string, error) {
	path := r.URL.Query().Get("path")
	if path == "" {
		return tree.ROOT_DIR, nil
	}
	var root *tree.Node
	err := g.node.ClientRead(func(fsm *statemachine.FSM) error {
		var err error
		root, err = fsm.GetNode("")
		return err
	})
	if err != nil {
		return "", err
	}
	return tree.EvaluatePath(root, path)
}

// writeWriteError redirects a KindNotLeader failure to the current
// leader's HTTP gateway address, matching spec.md's redirect form for
// mutations and linearizable reads (same path and query string, against
// the leader instead). ce.Leader is a Raft server ID, not an address —
// it's resolved through the cluster directory, which is what actually
// learned the leader's gateway address at handshake time.
func (g *Gateway) writeWriteError(w http.ResponseWriter, r *http.Request, err error) {
	if ce, ok := err.(*ccfserr.Error); ok && ce.Kind == ccfserr.KindNotLeader && ce.Leader != "" && g.cluster != nil {
		if addr, ok := g.cluster.AddressOf(ce.Leader); ok {
			location := "http://" + addr + r.URL.RequestURI()
			w.Header().Set("Location", location)
			w.WriteHeader(http.StatusTemporaryRedirect)
			return
		}
	}
	writeError(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithComponent("gateway").Warn().Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, ccfserr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

// clientID derives the idempotency client ID for a request. Clients
// that care about exactly-once semantics across retries (chunk servers,
// the CLI) set x-ccfs-client-id themselves; a request without one gets
// a fresh UUID, so it can never collide with, and replay the cached
// response of, an unrelated request.
func clientID(r *http.Request) string {
	if id := r.Header.Get("x-ccfs-client-id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// serial derives the idempotency serial number paired with clientID.
// Only meaningful alongside an explicit x-ccfs-client-id; a generated
// client ID is only ever used once, so its serial is always 1.
func serial(r *http.Request) uint64 {
	if s := r.Header.Get("x-ccfs-client-serial"); s != "" {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	}
	return 1
}
