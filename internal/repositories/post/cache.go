package post

import (
	"context"
	"encoding/json"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
)

// Cache keeps records as JSON next to the image bytes, under tweet:{id},
// and lets the store's TTL expire them.
type Cache struct {
	store  cache.Store
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(store cache.Store, ttl time.Duration, logger logger.Logger) *Cache {
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger.WithComponent("PostCacheRepo"),
	}
}

var _ Repository = (*Cache)(nil)

func (c *Cache) Create(ctx context.Context, record domain.PostRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeStoreFailure, "failed to encode post record")
	}
	return c.store.Set(ctx, cache.RecordKey(record.ImageID), b, c.ttl)
}

func (c *Cache) GetByImageID(ctx context.Context, imageID string) (*domain.PostRecord, error) {
	b, err := c.store.Get(ctx, cache.RecordKey(imageID))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record domain.PostRecord
	if err := json.Unmarshal(b, &record); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeStoreFailure, "failed to decode post record")
	}
	return &record, nil
}

// CleanupOldRecords is a no-op: entries expire with the store TTL.
func (c *Cache) CleanupOldRecords(context.Context, time.Duration) (int64, error) {
	return 0, nil
}
