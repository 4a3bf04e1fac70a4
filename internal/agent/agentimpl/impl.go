package agentimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/agent"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/notify"
	"github.com/orgball2608/tweet-screenshot-agent/internal/parser"
	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
	"github.com/orgball2608/tweet-screenshot-agent/internal/render"
	"github.com/orgball2608/tweet-screenshot-agent/internal/repositories/post"
	"github.com/orgball2608/tweet-screenshot-agent/internal/telegram"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

const (
	protocolName = "a2a-jsonrpc-2.0"

	backgroundTimeout = 2 * time.Minute
	mirrorTimeout     = 30 * time.Second
)

type Opts struct {
	fx.In

	LC       fx.Lifecycle
	Config   *config.Config
	Logger   logger.Logger
	Metrics  *metrics.Metrics `optional:"true"`
	Parser   parser.Client
	Renderer render.Client
	Store    cache.Store
	Posts    post.Repository
	Notifier notify.Client
	Telegram telegram.Client
}

type AgentImpl struct {
	Config   *config.Config
	Logger   logger.Logger
	Metrics  *metrics.Metrics
	Parser   parser.Client
	Renderer render.Client
	Store    cache.Store
	Posts    post.Repository
	Notifier notify.Client
	Telegram telegram.Client

	pool     *ants.Pool
	defaults protocol.MessageConfiguration
	now      func() time.Time
}

func New(opts Opts) (*AgentImpl, error) {
	a, err := newAgent(opts.Config, opts.Logger)
	if err != nil {
		return nil, err
	}
	a.Metrics = opts.Metrics
	a.Parser = opts.Parser
	a.Renderer = opts.Renderer
	a.Store = opts.Store
	a.Posts = opts.Posts
	a.Notifier = opts.Notifier
	a.Telegram = opts.Telegram

	opts.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return a.Close()
		},
	})
	return a, nil
}

func newAgent(cfg *config.Config, log logger.Logger) (*AgentImpl, error) {
	workers := cfg.Agent.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	blocking := cfg.Agent.Blocking
	return &AgentImpl{
		Config: cfg,
		Logger: log.WithComponent("Agent"),
		pool:   pool,
		defaults: protocol.MessageConfiguration{
			Blocking:            &blocking,
			AcceptedOutputModes: append([]string(nil), cfg.Agent.AcceptedOutputModes...),
		},
		now: time.Now,
	}, nil
}

var _ agent.Client = (*AgentImpl)(nil)

// Close waits for background tasks to drain.
func (a *AgentImpl) Close() error {
	if err := a.pool.ReleaseTimeout(10 * time.Second); err != nil {
		a.Logger.Warn("Worker pool did not drain in time", "error", err)
		return err
	}
	return nil
}

func (a *AgentImpl) Info() agent.Info {
	id := a.Config.App.ID
	if id == "" {
		id = a.Config.App.Name
	}
	return agent.Info{
		AgentName: a.Config.App.Name,
		AgentID:   id,
		Status:    "online",
		Protocol:  protocolName,
	}
}

func (a *AgentImpl) Image(ctx context.Context, imageID string) ([]byte, error) {
	return a.Store.Get(ctx, cache.ImageKey(imageID))
}

func (a *AgentImpl) imageURL(imageID string) string {
	return strings.TrimRight(a.Config.App.URL, "/") + "/image/" + imageID
}

// spawn runs fn on the worker pool, or on a fresh goroutine when the pool is
// saturated or already released.
func (a *AgentImpl) spawn(name string, fn func()) {
	if err := a.pool.Submit(fn); err != nil {
		a.Logger.Warn("Failed to submit job to ants pool, running detached", "job", name, "error", err)
		go fn()
	}
}
