package cacheimpl

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() logger.Logger {
	return logger.New(logger.Opts{Output: io.Discard})
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, discard()), mr
}

func TestRedis_SetGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t)

	png := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, store.Set(ctx, cache.ImageKey("tweet_1.png"), png, time.Hour))

	got, err := store.Get(ctx, "image:tweet_1.png")
	require.NoError(t, err)
	assert.Equal(t, png, got)
	assert.Equal(t, time.Hour, mr.TTL("image:tweet_1.png"))
}

func TestRedis_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t)

	require.NoError(t, store.Set(ctx, "tweet:a", []byte(`{}`), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tweet:a")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}

func TestRedis_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedis(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}

func TestRedis_Unreachable(t *testing.T) {
	store, mr := newTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Equal(t, errors.CodeStoreFailure, errors.GetCode(err))
}

func TestRedisOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Host = "cache"
	cfg.Redis.Port = 6380
	cfg.Redis.DB = 2

	opts, err := RedisOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	cfg.Redis.URL = "redis://:secret@example:6379/4"
	opts, err = RedisOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "example:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 4, opts.DB)

	cfg.Redis.URL = "not a url"
	_, err = RedisOptions(cfg)
	assert.Error(t, err)
}

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(discard())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "image:a", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "image:b", []byte("b"), 0))

	got, err := store.Get(ctx, "image:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "image:a")
	assert.True(t, errors.Is(err, cache.ErrNotFound))

	got, err = store.Get(ctx, "image:b")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(discard())

	v := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", v, 0))
	v[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(discard())

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "missing"))

	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}
