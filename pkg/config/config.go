package config

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"

	MetadataDriverCache    = "cache"
	MetadataDriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8000"`
		SentryUrl string `env:"SENTRY_URL"`
		Name      string `env:"AGENT_NAME" env-default:"tweet-screenshot-agent"`
		ID        string `env:"AGENT_ID"`
		URL       string `env:"AGENT_URL" env-default:"http://localhost:8000"`
	}
	Render struct {
		FontsDir string        `env:"FONTS_DIR" env-default:"fonts"`
		IconsDir string        `env:"ICONS_DIR" env-default:"icons"`
		ImageTTL time.Duration `env:"IMAGE_TTL" env-default:"24h"`
	}
	Store struct {
		Driver        string        `env:"STORE_DRIVER" env-default:"memory"`
		SweepInterval time.Duration `env:"STORE_SWEEP_INTERVAL" env-default:"1m"`
	}
	Redis struct {
		URL      string `env:"REDIS_URL"`
		Host     string `env:"REDIS_HOST" env-default:"localhost"`
		Port     int    `env:"REDIS_PORT" env-default:"6379"`
		DB       int    `env:"REDIS_DB" env-default:"0"`
		Password string `env:"REDIS_PASSWORD"`
	}
	Metadata struct {
		Driver    string        `env:"METADATA_DRIVER" env-default:"cache"`
		Retention time.Duration `env:"METADATA_RETENTION" env-default:"120h"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
	Agent struct {
		Workers             int      `env:"AGENT_WORKERS" env-default:"8"`
		AcceptedOutputModes []string `env:"AGENT_ACCEPTED_OUTPUT_MODES" env-separator:"," env-default:"text/plain,image/png,image/svg+xml"`
		Blocking            bool     `env:"AGENT_BLOCKING" env-default:"true"`
	}
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"30"`
		Period   time.Duration `env:"RATE_LIMIT_PERIOD" env-default:"1m"`
		Burst    int           `env:"RATE_LIMIT_BURST" env-default:"10"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
		cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
		cfg.Metadata.Driver = strings.ToLower(cfg.Metadata.Driver)
	})
	return cfg, nil
}

// GetDSN returns the lib/pq connection string used by goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

// GetPgxURL returns the postgres:// URL used by pgxpool.
func (c *Config) GetPgxURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.Name, c.Postgres.SslMode,
	)
}
