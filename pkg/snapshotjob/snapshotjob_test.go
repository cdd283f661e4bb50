package snapshotjob

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/hashicorp/raft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccfs/ccfs/pkg/statemachine"
	"github.com/ccfs/ccfs/pkg/tree"
	"github.com/ccfs/ccfs/pkg/types"
)

func applyRequest(t *testing.T, fsm *statemachine.FSM, index uint64, req types.ClientRequest) {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	fsm.Apply(&raft.Log{Index: index, Data: data})
}

func TestWriteSnapshotThenLoad(t *testing.T) {
	fsm := statemachine.New()
	applyRequest(t, fsm, 1, types.ClientRequest{
		ClientID: "c1", Serial: 1, Action: types.ActionAddPath,
		AddPath: &types.AddPathAction{TargetPath: tree.ROOT_DIR, Name: "docs", IsDir: true},
	})

	dir := t.TempDir()
	job := New(fsm, dir, "tree.snapshot", 0)
	require.NoError(t, job.writeSnapshot())

	root, err := Load(filepath.Join(dir, "tree.snapshot"))
	require.NoError(t, err)
	assert.Equal(t, tree.KindDirectory, root.Kind)
	assert.Contains(t, root.Children, "docs")
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.snapshot"))
	assert.Error(t, err)
}
