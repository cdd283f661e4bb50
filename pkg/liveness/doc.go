/*
Package liveness is the chunk server heartbeat registry. Chunk servers
call POST /api/ping every few seconds; Registry.Ping records the contact
time, and Registry.Active reports which servers are still within
DefaultTTL (6 seconds, matching the original ccfs-commons ChunkServer's
is_active check) so pkg/replication never targets a server that has
already gone quiet.
*/
package liveness
