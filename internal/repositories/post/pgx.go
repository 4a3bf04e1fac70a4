package post

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/internal/repositories"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

const table = "rendered_posts"

var columns = []string{
	"image_id", "username", "display_name", "body_text", "verified",
	"likes", "retweets", "replies", "views", "shown_at", "width", "height", "created_at",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
	now    func() time.Time
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostPgxRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*Pgx)(nil)

func insertQuery(record domain.PostRecord) (string, []any, error) {
	req := record.Request
	return repositories.SqBuilder.
		Insert(table).
		Columns(columns...).
		Values(record.ImageID, req.Username, req.DisplayName, req.BodyText, req.Verified,
			req.Likes, req.Retweets, req.Replies, req.Views, req.Timestamp,
			record.Width, record.Height, record.CreatedAt).
		ToSql()
}

func selectByImageIDQuery(imageID string) (string, []any, error) {
	return repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"image_id": imageID}).
		Limit(1).
		ToSql()
}

func cleanupQuery(cutoff time.Time) (string, []any, error) {
	return repositories.SqBuilder.
		Delete(table).
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
}

// Create adds a new rendered post entry
func (p *Pgx) Create(ctx context.Context, record domain.PostRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = p.now()
	}

	query, args, err := insertQuery(record)
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByImageID returns the entry for one rendered image
func (p *Pgx) GetByImageID(ctx context.Context, imageID string) (*domain.PostRecord, error) {
	query, args, err := selectByImageIDQuery(imageID)
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var (
		record domain.PostRecord
		req    = &record.Request
	)
	err = p.pg.QueryRow(ctx, query, args...).Scan(
		&record.ImageID, &req.Username, &req.DisplayName, &req.BodyText, &req.Verified,
		&req.Likes, &req.Retweets, &req.Replies, &req.Views, &req.Timestamp,
		&record.Width, &record.Height, &record.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CleanupOldRecords deletes records older than the specified age
func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	query, args, err := cleanupQuery(p.now().Add(-olderThan))
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
