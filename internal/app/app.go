package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/tweet-screenshot-agent/internal/agent"
	"github.com/orgball2608/tweet-screenshot-agent/internal/agent/agentimpl"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache/cacheimpl"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/migrations"
	"github.com/orgball2608/tweet-screenshot-agent/internal/notify"
	"github.com/orgball2608/tweet-screenshot-agent/internal/notify/notifyimpl"
	"github.com/orgball2608/tweet-screenshot-agent/internal/parser"
	"github.com/orgball2608/tweet-screenshot-agent/internal/parser/parserimpl"
	"github.com/orgball2608/tweet-screenshot-agent/internal/ratelimit"
	"github.com/orgball2608/tweet-screenshot-agent/internal/render"
	"github.com/orgball2608/tweet-screenshot-agent/internal/render/renderimpl"
	"github.com/orgball2608/tweet-screenshot-agent/internal/repositories/post"
	"github.com/orgball2608/tweet-screenshot-agent/internal/server"
	"github.com/orgball2608/tweet-screenshot-agent/internal/telegram"
	"github.com/orgball2608/tweet-screenshot-agent/internal/telegram/telegramimpl"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
)

const (
	retentionCron  = "0 3 * * *"
	limiterIdleTTL = 30 * time.Minute
	cleanupTimeout = 5 * time.Minute
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		metrics.New,
		newLimiter,
	),
	fx.Provide(
		fx.Annotate(
			parserimpl.New,
			fx.As(new(parser.Client)),
		),
		fx.Annotate(
			renderimpl.New,
			fx.As(new(render.Client)),
		),
		fx.Annotate(
			notifyimpl.New,
			fx.As(new(notify.Client)),
		),
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		),
		fx.Annotate(
			agentimpl.New,
			fx.As(new(agent.Client)),
		),
		server.New,
	),
	cacheimpl.Module,
	post.Module,
	fx.Invoke(migrate),
	fx.Invoke(scheduleCleanup),
	fx.Invoke(func(*server.Server) {}),
)

func newLimiter(cfg *config.Config) (*ratelimit.InMemoryLimiter, ratelimit.Limiter) {
	l := ratelimit.NewInMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Period, cfg.RateLimit.Burst)
	return l, l
}

// migrate applies the embedded schema when metadata lives in Postgres.
func migrate(cfg *config.Config, log logger.Logger) error {
	if cfg.Metadata.Driver != config.MetadataDriverPostgres {
		return nil
	}
	if err := migrations.Up(cfg.GetDSN()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info("Database migrations applied")
	return nil
}

type cleanupOpts struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.Config
	Logger  logger.Logger
	Posts   post.Repository
	Limiter *ratelimit.InMemoryLimiter
}

// scheduleCleanup registers the daily metadata retention job and the hourly
// limiter prune.
func scheduleCleanup(opts cleanupOpts) error {
	log := opts.Logger.WithComponent("Cleanup")

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.CronJob(retentionCron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer cancel()

			removed, err := opts.Posts.CleanupOldRecords(ctx, opts.Config.Metadata.Retention)
			if err != nil {
				log.Error("Failed to clean up post records", "error", err)
				return
			}
			log.Info("Cleaned up post records", "removed", removed, "retention", opts.Config.Metadata.Retention)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			if n := opts.Limiter.Prune(limiterIdleTTL); n > 0 {
				log.Debug("Pruned idle rate limit buckets", "removed", n)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule limiter prune: %w", err)
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			return s.Shutdown()
		},
	})
	return nil
}
