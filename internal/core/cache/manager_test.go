package cache

import (
	"context"
	"testing"
	"time"

	"recipe-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testManager(maxSize int) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := &config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: maxSize, TTL: time.Minute}
	return newManager(cfg, clock.Now), clock
}

func TestManagerGetSet(t *testing.T) {
	m, _ := testManager(10)
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	value := []byte(`{"flour":{}}`)
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"flour":{}}`, string(got))

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}

func TestManagerExpiry(t *testing.T) {
	m, clock := testManager(10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	clock.Advance(30 * time.Second)
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	clock.Advance(31 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, int64(1), m.Stats()["evictions"])
}

func TestManagerEvictsWhenFull(t *testing.T) {
	m, clock := testManager(2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	clock.Advance(time.Second)
	require.NoError(t, m.Set(ctx, "b", []byte("2")))

	// a 被讀取過，b 應被淘汰
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("3")))
	assert.Equal(t, 2, m.Stats()["size"])

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManagerPrefersExpiredOverLRU(t *testing.T) {
	m, clock := testManager(2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "old", []byte("1")))
	clock.Advance(2 * time.Minute)
	require.NoError(t, m.Set(ctx, "fresh", []byte("2")))
	require.NoError(t, m.Set(ctx, "new", []byte("3")))

	_, err := m.Get(ctx, "fresh")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m, _ := testManager(1)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("1")))
	require.NoError(t, m.Set(ctx, "k", []byte("2")))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
	assert.Equal(t, int64(0), m.Stats()["evictions"])
}

func TestManagerClose(t *testing.T) {
	cfg := &config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 5, TTL: time.Minute, CleanupInterval: time.Millisecond}
	m := NewManager(cfg)
	require.NoError(t, m.Set(context.Background(), "k", []byte("v")))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, &config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(ctx, &config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 5, TTL: time.Minute})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "memory", c.Stats()["backend"])
	require.NoError(t, c.Close())

	_, err = New(ctx, &config.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.Error(t, err)
}

func TestNewRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, &config.CacheConfig{Enabled: true, Backend: "redis", RedisAddr: "127.0.0.1:1", TTL: time.Minute})
	assert.Error(t, err)
}
