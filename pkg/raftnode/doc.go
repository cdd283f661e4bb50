/*
Package raftnode is the only package in CCFS that talks to hashicorp/raft
directly. It wires pkg/statemachine's FSM to a raft.NewTCPTransport, a
raft.FileSnapshotStore and two raft-boltdb stores (log + stable state),
then exposes four operations to the rest of the coordinator:

  - Bootstrap forms a new single-voter cluster.
  - AddVoter/RemoveServer reconfigure membership; both require leadership.
  - ClientWrite submits a types.ClientRequest through raft.Apply and
    returns the FSM's response, or a KindNotLeader error carrying the
    current leader's Raft server ID, which pkg/gateway resolves to an
    HTTP address before redirecting.
  - ClientRead takes a raft.Barrier before running the caller's read
    against the FSM, so a read observes every write committed before the
    call — callers that only need a stale read go straight through FSM().

Raft's own snapshotting (via FSM.Snapshot/Restore) is log compaction, not
the same thing as pkg/snapshotjob's periodic tree export: the former
keeps the Raft log bounded, the latter writes a local file that
snapshotjob.Load can read back. ccfsd itself does not load that file at
startup.
*/
package raftnode
