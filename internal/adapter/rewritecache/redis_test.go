package rewritecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/go-redis/redismock/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "Betaald parkeren centrum|2.50"

func TestRedis_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		m := observability.NewMetricsForTesting()
		c := NewRedis(db, time.Hour, m)

		mock.ExpectGet(DefaultKeyPrefix + testKey).SetVal("€ 2.50 per hour")

		v, ok, err := c.Get(ctx, testKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "€ 2.50 per hour", v)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.RewriteCache.WithLabelValues("redis", "hit")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := NewRedis(db, time.Hour, nil)

		mock.ExpectGet(DefaultKeyPrefix + testKey).RedisNil()

		v, ok, err := c.Get(ctx, testKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		m := observability.NewMetricsForTesting()
		c := NewRedis(db, time.Hour, m)

		mock.ExpectGet(DefaultKeyPrefix + testKey).SetErr(errors.New("connection refused"))

		_, ok, err := c.Get(ctx, testKey)
		require.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "redis get")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.RewriteCache.WithLabelValues("redis", "error")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedis_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("stores with ttl", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := NewRedis(db, 720*time.Hour, nil)

		mock.ExpectSet(DefaultKeyPrefix+testKey, "€ 2.50 per hour", 720*time.Hour).SetVal("OK")

		require.NoError(t, c.Put(ctx, testKey, "€ 2.50 per hour"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := NewRedis(db, time.Hour, nil)

		mock.ExpectSet(DefaultKeyPrefix+testKey, "x", time.Hour).SetErr(errors.New("read only replica"))

		err := c.Put(ctx, testKey, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis set")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
