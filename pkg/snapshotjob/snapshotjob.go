// Package snapshotjob periodically serializes the namespace tree to a
// local file, independent of (and much cheaper than) a full Raft
// snapshot, which Load can read back. Nothing in ccfsd loads it at
// startup. Ports the original
// metadata-server's jobs::snapshot module, trading its tempfile crate
// + tokio::fs for os.CreateTemp + os.Rename.
package snapshotjob

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ccfs/ccfs/pkg/ccfserr"
	"github.com/ccfs/ccfs/pkg/log"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/statemachine"
	"github.com/ccfs/ccfs/pkg/tree"
)

// DefaultInterval matches the original job's 10-second cadence before
// server_config.rs made it configurable.
const DefaultInterval = 10 * time.Second

// Job periodically writes the current tree to disk.
type Job struct {
	fsm      *statemachine.FSM
	path     string
	interval time.Duration
	logger   zerolog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Job that writes fsm's tree to filepath.Join(dir, file)
// every interval (DefaultInterval if zero).
func New(fsm *statemachine.FSM, dir, file string, interval time.Duration) *Job {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Job{
		fsm:      fsm,
		path:     filepath.Join(dir, file),
		interval: interval,
		logger:   log.WithComponent("snapshotjob"),
		stopCh:   make(chan struct{}),
	}
}

// Start runs the write loop in a goroutine until Stop is called.
func (j *Job) Start() {
	go j.run()
}

// Stop ends the write loop. Safe to call more than once.
func (j *Job) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

func (j *Job) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.writeSnapshot(); err != nil {
				metrics.SnapshotWritesTotal.WithLabelValues("error").Inc()
				j.logger.Warn().Err(err).Msg("failed to write local snapshot")
				continue
			}
			metrics.SnapshotWritesTotal.WithLabelValues("success").Inc()
			j.logger.Info().Str("path", j.path).Msg("wrote local snapshot")
		case <-j.stopCh:
			return
		}
	}
}

// writeSnapshot serializes the tree to a temp file in the same
// directory as the destination, then renames it into place — the
// rename is atomic on the same filesystem, so a reader never observes
// a partially written snapshot.
func (j *Job) writeSnapshot() error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SnapshotWriteDuration)

	root, err := j.fsm.CloneTree()
	if err != nil {
		return ccfserr.Wrap(ccfserr.KindIO, err, "clone tree for snapshot")
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ccfserr.Wrap(ccfserr.KindIO, err, "create snapshot dir")
	}

	tmp, err := os.CreateTemp(dir, "tmp_snapshot")
	if err != nil {
		return ccfserr.Wrap(ccfserr.KindIO, err, "create temp snapshot file")
	}
	tmpPath := tmp.Name()

	if err := json.NewEncoder(tmp).Encode(root); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return ccfserr.Wrap(ccfserr.KindIO, err, "write temp snapshot file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return ccfserr.Wrap(ccfserr.KindIO, err, "close temp snapshot file")
	}

	if err := os.Rename(tmpPath, j.path); err != nil {
		os.Remove(tmpPath)
		return ccfserr.Wrap(ccfserr.KindIO, err, "rename temp snapshot into place")
	}
	return nil
}

// Load reads a tree previously written by writeSnapshot from path. A
// missing file is returned as a KindIO error. The returned tree is not
// installed into any FSM, and cmd/ccfsd does not call Load.
func Load(path string) (*tree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ccfserr.Wrap(ccfserr.KindIO, err, "open local snapshot file")
	}
	defer f.Close()

	var root tree.Node
	if err := json.NewDecoder(f).Decode(&root); err != nil {
		return nil, ccfserr.Wrap(ccfserr.KindIO, err, "decode local snapshot file")
	}
	return &root, nil
}
