package rewritecache

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_BasicGetPut(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(3, 0, nil)

	require.NoError(t, c.Put(ctx, "a", "A"))
	require.NoError(t, c.Put(ctx, "b", "B"))

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Eviction(t *testing.T) {
	c := NewMemory(2, 0, nil)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
	assert.Equal(t, 2, c.Len())
}

func TestMemory_AccessPromotesEntry(t *testing.T) {
	c := NewMemory(2, 0, nil)

	c.put("a", "A")
	c.put("b", "B")
	c.get("a")
	c.put("c", "C") // evicts "b", not "a"

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestMemory_UpdateExisting(t *testing.T) {
	c := NewMemory(2, 0, nil)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_Expiry(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	c := NewMemory(10, time.Hour, nil)
	c.clock = fake

	c.put("a", "A")
	fake.Advance(59 * time.Minute)
	_, ok := c.get("a")
	assert.True(t, ok)

	fake.Advance(time.Minute)
	_, ok = c.get("a")
	assert.False(t, ok, "entry should expire after ttl")
	assert.Zero(t, c.Len())
}

func TestMemory_Metrics(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetricsForTesting()
	c := NewMemory(2, 0, m)

	_ = c.Put(ctx, "a", "A")
	_, _, _ = c.Get(ctx, "a")
	_, _, _ = c.Get(ctx, "b")
	_, _, _ = c.Get(ctx, "c")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RewriteCache.WithLabelValues("memory", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RewriteCache.WithLabelValues("memory", "miss")))
}
