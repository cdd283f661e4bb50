// Package config's Load is the only place a coordinator's YAML file is
// parsed. server_id, host and port feed pkg/raftnode.Config's defaults
// and pkg/gateway's bind address; the snapshot and replication fields
// feed pkg/snapshotjob and pkg/replication. The id field is parsed but
// not read by ccfsd.
package config
