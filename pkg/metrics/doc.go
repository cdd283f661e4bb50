/*
Package metrics collects the Prometheus series the CCFS coordinator
exposes on /metrics, plus the generic HealthChecker behind the /health
and /ready handlers (and LivenessHandler, which pkg/gateway does not
mount).

# Series

Raft: ccfs_raft_is_leader, ccfs_raft_peers_total, ccfs_raft_log_index,
ccfs_raft_applied_index — set by pkg/collector on its ticker;
ccfs_raft_apply_duration_seconds — observed by pkg/raftnode around every
ClientWrite.

Gateway: ccfs_api_requests_total, ccfs_api_request_duration_seconds —
recorded by pkg/gateway's instrumenting middleware for every handled
request.

Liveness: ccfs_chunk_servers_active, ccfs_chunk_servers_total — refreshed
by pkg/liveness on every ping and resampled by pkg/collector on its
ticker.

Tree/index: ccfs_files_total, ccfs_chunks_total — refreshed by
pkg/statemachine after every Apply and resampled by pkg/collector.

Replication: ccfs_replication_tick_duration_seconds,
ccfs_replication_requests_total, ccfs_replication_deficit_chunks —
recorded by pkg/replication's controller at the end of each tick.

Snapshot: ccfs_snapshot_write_duration_seconds,
ccfs_snapshot_writes_total — recorded by pkg/snapshotjob after each
write attempt.

# Health

HealthChecker tracks independent component readiness under component
names registered by each package at startup ("raft", "liveness",
"gateway"); GetReadiness treats those three as critical, so /ready
reports not-ready until all three have reported in at least once.
*/
package metrics
