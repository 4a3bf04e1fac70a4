package post

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache/cacheimpl"
	mock_cache "github.com/orgball2608/tweet-screenshot-agent/internal/cache/mocks"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func discard() logger.Logger {
	return logger.New(logger.Opts{Output: io.Discard})
}

func sampleRecord() domain.PostRecord {
	return domain.PostRecord{
		ImageID: "tweet_abc.png",
		Request: domain.PostRequest{
			Username:    "alice",
			DisplayName: "Alice",
			BodyText:    "hello",
			Verified:    true,
			Likes:       10,
		},
		Width:     598,
		Height:    223,
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := cacheimpl.NewMemory(discard())
	repo := NewCache(store, time.Hour, discard())

	require.NoError(t, repo.Create(ctx, sampleRecord()))

	raw, err := store.Get(ctx, "tweet:tweet_abc.png")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tweet_text":"hello"`)

	got, err := repo.GetByImageID(ctx, "tweet_abc.png")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), *got)
}

func TestCache_NotFound(t *testing.T) {
	repo := NewCache(cacheimpl.NewMemory(discard()), time.Hour, discard())

	_, err := repo.GetByImageID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCache_UsesTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_cache.NewMockStore(ctrl)
	repo := NewCache(store, 24*time.Hour, discard())

	store.EXPECT().
		Set(gomock.Any(), cache.RecordKey("tweet_abc.png"), gomock.Any(), 24*time.Hour).
		Return(nil)

	require.NoError(t, repo.Create(context.Background(), sampleRecord()))
}

func TestCache_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_cache.NewMockStore(ctrl)
	repo := NewCache(store, time.Hour, discard())

	boom := errors.NewWithCode(errors.CodeStoreFailure, "down")
	store.EXPECT().Get(gomock.Any(), "tweet:x").Return(nil, boom)

	_, err := repo.GetByImageID(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, errors.CodeStoreFailure, errors.GetCode(err))
}

func TestCache_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := cacheimpl.NewMemory(discard())
	repo := NewCache(store, time.Hour, discard())

	require.NoError(t, store.Set(ctx, "tweet:bad", []byte("{"), 0))

	_, err := repo.GetByImageID(ctx, "bad")
	require.Error(t, err)
	assert.Equal(t, errors.CodeStoreFailure, errors.GetCode(err))
}

func TestInsertQuery(t *testing.T) {
	query, args, err := insertQuery(sampleRecord())
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO rendered_posts (image_id,username,display_name,body_text,verified")
	assert.Contains(t, query, "$13")
	require.Len(t, args, 13)
	assert.Equal(t, "tweet_abc.png", args[0])
	assert.Equal(t, int64(10), args[5])
}

func TestSelectByImageIDQuery(t *testing.T) {
	query, args, err := selectByImageIDQuery("tweet_abc.png")
	require.NoError(t, err)

	assert.Contains(t, query, "FROM rendered_posts WHERE image_id = $1 LIMIT 1")
	assert.Equal(t, []any{"tweet_abc.png"}, args)
}

func TestCleanupQuery(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := cleanupQuery(cutoff)
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM rendered_posts WHERE created_at < $1", query)
	assert.Equal(t, []any{cutoff}, args)
}
