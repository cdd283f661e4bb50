package liveness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingThenLookup(t *testing.T) {
	r := NewRegistry()
	r.Ping("srv-1", "10.0.0.1:9000")

	rec, err := r.Lookup("srv-1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:9000", rec.Address)
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("nope")
	require.Error(t, err)
}

func TestActiveExcludesExpiredRecords(t *testing.T) {
	r := NewRegistryWithTTL(50 * time.Millisecond)
	r.Ping("srv-1", "10.0.0.1:9000")
	assert.Len(t, r.Active(), 1)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, r.Active())
	assert.Len(t, r.All(), 1)
}

func TestActiveSortedByServerID(t *testing.T) {
	r := NewRegistry()
	r.Ping("srv-b", "10.0.0.2:9000")
	r.Ping("srv-a", "10.0.0.1:9000")

	active := r.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "srv-a", active[0].ServerID)
	assert.Equal(t, "srv-b", active[1].ServerID)
}
