/*
Package log wraps zerolog with the small set of child-logger constructors
the CCFS coordinator uses to attach consistent context fields to log
lines:

  - WithComponent tags a logger with the coordinator subsystem emitting
    it ("raftnode", "replication", "gateway", "liveness", ...).
  - WithNodeID tags a logger with the Raft server ID of the coordinator
    process itself.
  - WithServerID, WithFileID and WithChunkID tag a logger with the ID of
    the chunk server, file or chunk a log line is about.

Init configures the global Logger from a Config (level, JSON vs console
output, destination writer); call it once at process startup before any
other package logs. Every other function in this package reads or derives
from the global Logger, so packages that want component-scoped logging
call WithComponent (or one of the ID variants) once and hold onto the
returned zerolog.Logger rather than re-deriving it per call.
*/
package log
