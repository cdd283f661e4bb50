/*
Package snapshotjob writes the namespace tree to a plain file on a
fixed interval, separate from Raft's own log-compaction snapshot
(pkg/statemachine's FSM.Snapshot/Restore against raft.FileSnapshotStore).
Load reads the file back into a tree. ccfsd does not call Load at
startup; a restarted coordinator rebuilds its state from Raft's own
snapshot and log.
*/
package snapshotjob
