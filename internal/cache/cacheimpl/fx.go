package cacheimpl

import (
	"fmt"

	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// New picks the store named by STORE_DRIVER.
func New(opts Opts) (cache.Store, error) {
	switch opts.Config.Store.Driver {
	case config.StoreDriverRedis:
		return NewRedisStore(opts)
	case config.StoreDriverMemory, "":
		return NewMemoryStore(opts)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Config.Store.Driver)
	}
}

var Module = fx.Module("cache",
	fx.Provide(New),
)
