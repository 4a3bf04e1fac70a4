package cacheimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var _ cache.Store = (*Redis)(nil)

type Redis struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedis(client *redis.Client, log logger.Logger) *Redis {
	return &Redis{
		client: client,
		logger: log.WithComponent("RedisStore"),
	}
}

// RedisOptions builds client options from REDIS_URL, or from the host fields when it is empty.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, nil
}

// NewRedisStore creates the client and ties its lifetime to the application.
func NewRedisStore(opts Opts) (*Redis, error) {
	redisOpts, err := RedisOptions(opts.Config)
	if err != nil {
		return nil, err
	}

	store := NewRedis(redis.NewClient(redisOpts), opts.Logger)

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			err := retry.Do(ctx, store.logger, "redis ping", func() error {
				return store.client.Ping(ctx).Err()
			}, retry.DefaultConfig())
			if err != nil {
				return fmt.Errorf("failed to ping redis: %w", err)
			}
			store.logger.Info("Connected to redis", "addr", redisOpts.Addr, "db", redisOpts.DB)
			return nil
		},
		OnStop: func(context.Context) error {
			return store.client.Close()
		},
	})

	return store, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeStoreFailure, "redis set "+key)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeStoreFailure, "redis get "+key)
	}
	return b, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeStoreFailure, "redis del "+key)
	}
	return nil
}
