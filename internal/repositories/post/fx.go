package post

import (
	"fmt"

	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/pgx"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
	Store  cache.Store
}

// New picks the repository named by METADATA_DRIVER. The Postgres pool is
// only opened when it is selected.
func New(opts Opts) (Repository, error) {
	switch opts.Config.Metadata.Driver {
	case config.MetadataDriverPostgres:
		pool, err := pgx.New(pgx.Opts{LC: opts.LC, Logger: opts.Logger, Config: opts.Config})
		if err != nil {
			return nil, err
		}
		return NewPgx(pool, opts.Logger), nil
	case config.MetadataDriverCache, "":
		return NewCache(opts.Store, opts.Config.Render.ImageTTL, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown metadata driver %q", opts.Config.Metadata.Driver)
	}
}

var Module = fx.Module("post_repository",
	fx.Provide(New),
)
