package cache

import (
	"context"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

var (
	ErrNotFound     = errors.NewWithCode(errors.CodeNotFound, "cache entry not found")
	ErrStoreFailure = errors.NewWithCode(errors.CodeStoreFailure, "cache store failure")
)

const (
	imagePrefix  = "image:"
	recordPrefix = "tweet:"
)

// ImageKey is where the PNG bytes of a render live.
func ImageKey(imageID string) string {
	return imagePrefix + imageID
}

// RecordKey is where the JSON metadata of a render lives.
func RecordKey(imageID string) string {
	return recordPrefix + imageID
}

//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock.go

// Store is an opaque byte sink with expiry.
type Store interface {
	// Set stores value under key. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error
}
