package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventDeduper(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryEventDeduper()

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.MarkProcessed(ctx, "evt_1"))

	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = d.Seen(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryEventDeduper_Expires(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryEventDeduper()
	d.ttl = time.Millisecond

	require.NoError(t, d.MarkProcessed(ctx, "evt_1"))
	time.Sleep(5 * time.Millisecond)

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "dedup:webhook:evt_123", dedupKey("evt_123"))
}

func TestRedisEventDeduper_UnreachableServer(t *testing.T) {
	d := NewRedisEventDeduper("127.0.0.1:1")
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := d.Seen(ctx, "evt_1")
	assert.Error(t, err)
}
