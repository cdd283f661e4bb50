/*
Package gateway exposes CCFS's coordinator as HTTP. Reads go through
raftnode.ClientRead's barrier, writes through ClientWrite; either one
returning a not-leader error turns into a 307 redirect to the current
leader, same path and query string. /raft/ws is delegated straight to
pkg/cluster, and /health, /ready, /metrics to pkg/metrics.
*/
package gateway
