package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ccfsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
id: 1
server_id: 3b9a1e2a-38a1-4e7f-9f0a-2a7a7e6f9b10
host: 127.0.0.1
port: 7000
snapshot_interval: 10
snapshot_dir_path: `+dir+`
snapshot_file_name: tree.snapshot
replication_interval: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Address())
	assert.Equal(t, filepath.Join(dir, "tree.snapshot"), cfg.SnapshotPath())
}

func TestLoadRejectsEmptyHost(t *testing.T) {
	path := writeConfig(t, `
id: 1
host: ""
port: 7000
snapshot_interval: 10
snapshot_dir_path: /tmp/ccfs
snapshot_file_name: tree.snapshot
replication_interval: 20
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsZeroSnapshotInterval(t *testing.T) {
	path := writeConfig(t, `
id: 1
host: 127.0.0.1
port: 7000
snapshot_interval: 0
snapshot_dir_path: /tmp/ccfs
snapshot_file_name: tree.snapshot
replication_interval: 20
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadExpandsHomePrefix(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := writeConfig(t, `
id: 1
host: 127.0.0.1
port: 7000
snapshot_interval: 10
snapshot_dir_path: ~/ccfs-test-snapshot-dir
snapshot_file_name: tree.snapshot
replication_interval: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ccfs-test-snapshot-dir"), cfg.SnapshotDirPath)
	os.RemoveAll(cfg.SnapshotDirPath)
}
