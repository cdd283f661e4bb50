/*
Package types defines the wire-level value types shared across CCFS's
coordinator: the Raft client request/response envelope, chunk location
records, and chunk server liveness records.

It deliberately does not define the namespace tree itself (see pkg/tree)
or the file index (owned by pkg/statemachine) — those are internal state
of their owning components, not values that cross a package boundary
unchanged. What lives here is what gets marshaled into a Raft log entry
or an HTTP response body.

# Core Types

ClientRequest is the payload applied to the state machine through Raft.
ClientID and Serial make Apply idempotent: replaying the same
(ClientID, Serial) pair returns the cached ClientResponse instead of
mutating state twice.

ChunkLocation and ChunkServerRecord describe one replica and one chunk
server respectively; pkg/liveness and pkg/replication build on both.
*/
package types
