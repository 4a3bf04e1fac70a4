package post

import (
	"context"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

var (
	ErrAlreadyExists = errors.NewWithCode(errors.CodeAlreadyExists, "post record already exists")
	ErrNotFound      = errors.NewWithCode(errors.CodeNotFound, "post record not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// Create stores the metadata of one rendered screenshot
	Create(ctx context.Context, record domain.PostRecord) error

	// GetByImageID returns the record for a rendered image
	GetByImageID(ctx context.Context, imageID string) (*domain.PostRecord, error)

	// CleanupOldRecords deletes records older than the given age
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
