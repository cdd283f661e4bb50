/*
Package replication's Controller is CCFS's durability engine: a ticker
task that keeps every chunk at TargetReplicas copies across active chunk
servers. Each tick:

 1. Snapshots the active chunk server set from pkg/liveness.
 2. Walks every file the state machine knows about and, for each chunk,
    intersects its known replica locations with the active set.
 3. For chunks below target with at least one surviving replica, asks a
    holder to push a copy to a server that doesn't have one yet, via
    POST {holder}/api/replicate with x-ccfs-chunk-id/x-ccfs-file-id/
    x-ccfs-server-url headers.

A chunk with zero surviving replicas is unrecoverable by replication
alone and is left for a future repair path to surface, not silently
retried forever.
*/
package replication
