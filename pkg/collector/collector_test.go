package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccfs/ccfs/pkg/liveness"
	"github.com/ccfs/ccfs/pkg/raftnode"
)

func TestCollectDoesNotPanicOnFreshNode(t *testing.T) {
	n, err := raftnode.New(raftnode.Config{
		NodeID:   "node-collector",
		BindAddr: "127.0.0.1:27701",
		DataDir:  t.TempDir(),
	})
	require.NoError(t, err)
	defer n.Shutdown()
	require.NoError(t, n.Bootstrap())

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && !n.IsLeader() {
		time.Sleep(50 * time.Millisecond)
	}
	require.True(t, n.IsLeader())

	lv := liveness.NewRegistry()
	lv.Ping("srv-1", "http://127.0.0.1:9001")

	c := New(n, lv)
	assert.NotPanics(t, c.collect)
}
