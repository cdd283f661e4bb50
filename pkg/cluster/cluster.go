// Package cluster is CCFS's peer-address directory: a WebSocket endpoint
// peers dial to announce "this node ID lives at these addresses", so a
// follower that only knows a leader's advertised address can discover
// every other peer's Raft transport and HTTP gateway addresses without a
// second discovery mechanism. It sits alongside, not instead of,
// hashicorp/raft's own NetworkTransport: AppendEntries/Vote/InstallSnapshot
// still travel over raft.NewTCPTransport, this package only answers
// "where is node X" and, on the leader, turns an announcement into an
// AddVoter call. Ports the handshake half of the original
// metadata-server's ws::Cluster actor, dropping its Rust-actor plumbing
// for a goroutine-per-connection model more natural to gorilla/websocket.
package cluster

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ccfs/ccfs/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// peerInfo is what one node announces about itself: the two distinct
// addresses a peer needs — one to dial with hashicorp/raft's transport,
// one to redirect an HTTP client to.
type peerInfo struct {
	RaftAddr    string
	GatewayAddr string
}

// Registry tracks the addresses every peer announced itself at, keyed by
// Raft server ID, and (when this node is the Raft leader) admits an
// announcing peer as a voter.
type Registry struct {
	mu       sync.RWMutex
	peers    map[string]peerInfo
	selfID   string
	self     peerInfo
	addVoter func(nodeID, raftAddr string) error
}

// NewRegistry returns an empty peer registry identifying this node as
// selfID, reachable at selfRaftAddr/selfGatewayAddr. addVoter is called
// with an announcing peer's (ID, Raft address) whenever a handshake
// completes; pass node.AddVoter to actually admit peers — it is a no-op
// (logged, not fatal) if this node isn't the leader.
func NewRegistry(selfID, selfRaftAddr, selfGatewayAddr string, addVoter func(nodeID, raftAddr string) error) *Registry {
	return &Registry{
		peers:    make(map[string]peerInfo),
		selfID:   selfID,
		self:     peerInfo{RaftAddr: selfRaftAddr, GatewayAddr: selfGatewayAddr},
		addVoter: addVoter,
	}
}

// AddressOf returns the HTTP gateway address node id announced, if any.
// This is what pkg/gateway resolves a KindNotLeader error's leader ID
// into before composing a redirect.
func (r *Registry) AddressOf(id string) (string, bool) {
	if id == r.selfID {
		return r.self.GatewayAddr, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.peers[id]
	return p.GatewayAddr, ok
}

// Peers returns a snapshot of every known node ID to gateway address
// mapping, not including this node itself.
func (r *Registry) Peers() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.peers))
	for id, p := range r.peers {
		out[id] = p.GatewayAddr
	}
	return out
}

func (r *Registry) register(id string, info peerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[id] = info
}

func (r *Registry) unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, id)
}

// Handler upgrades a /raft/ws request to a WebSocket, exchanges identity
// handshakes with the dialing peer, registers it, admits it as a Raft
// voter if this node is the leader, and blocks reading (and discarding)
// frames until the connection closes, at which point the peer is
// unregistered. Run it in the goroutine the HTTP server already gives
// each request.
func (r *Registry) Handler(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.WithComponent("cluster").Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	id, info, ok := parseHandshake(string(msg))
	if !ok {
		log.WithComponent("cluster").Warn().Str("handshake", string(msg)).Msg("malformed cluster handshake")
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(r.handshakeLine())); err != nil {
		log.WithComponent("cluster").Warn().Err(err).Msg("failed to reply with cluster handshake")
		return
	}

	r.register(id, info)
	log.WithComponent("cluster").Info().Str("node_id", id).Str("raft_addr", info.RaftAddr).
		Str("gateway_addr", info.GatewayAddr).Msg("peer joined cluster directory")
	defer func() {
		r.unregister(id)
		log.WithComponent("cluster").Info().Str("node_id", id).Msg("peer left cluster directory")
	}()

	if r.addVoter != nil {
		if err := r.addVoter(id, info.RaftAddr); err != nil {
			log.WithComponent("cluster").Warn().Err(err).Str("node_id", id).Msg("failed to add announcing peer as raft voter")
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (r *Registry) handshakeLine() string {
	return handshakeLine(r.selfID, r.self.RaftAddr, r.self.GatewayAddr)
}

func handshakeLine(id, raftAddr, gatewayAddr string) string {
	return id + "|" + raftAddr + "|" + gatewayAddr
}

// Announce dials wsURL and exchanges the "node_id|raft_addr|gateway_addr"
// handshake: self is registered in the remote peer's directory, and the
// remote peer's reply is registered in self's own directory, so a
// follower joining a leader learns the leader's gateway address too
// (needed to resolve its own redirects). The returned connection is kept
// open with periodic pings until Close is called or a ping fails to
// send; a caller that discards the connection without closing it stays
// registered on the remote side for as long as those pings succeed. The
// remote side unregisters the node once the connection drops.
func Announce(wsURL string, self *Registry, selfRaftAddr, selfGatewayAddr string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial cluster endpoint %s: %w", wsURL, err)
	}
	handshake := handshakeLine(self.selfID, selfRaftAddr, selfGatewayAddr)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(handshake)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send cluster handshake: %w", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read cluster handshake reply: %w", err)
	}
	peerID, info, ok := parseHandshake(string(msg))
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("malformed cluster handshake reply: %q", msg)
	}
	self.register(peerID, info)

	go keepAlive(conn)
	return conn, nil
}

func keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func parseHandshake(raw string) (id string, info peerInfo, ok bool) {
	parts := strings.SplitN(raw, "|", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", peerInfo{}, false
	}
	return parts[0], peerInfo{RaftAddr: parts[1], GatewayAddr: parts[2]}, true
}
