package telegramimpl

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/telegram"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

// Sender is the part of *tgbotapi.BotAPI the mirror uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Opts struct {
	fx.In

	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type TelegramImpl struct {
	TgBot   Sender
	Logger  logger.Logger
	Config  *config.Config
	Metrics *metrics.Metrics
	// Limiter keeps channel posts under the Bot API flood limit.
	Limiter *rate.Limiter
}

// New connects the bot when a token is configured. Without one the mirror
// stays disabled and the agent skips it.
func New(opts Opts) (*TelegramImpl, error) {
	tg := &TelegramImpl{
		Logger:  opts.Logger.WithComponent("Telegram"),
		Config:  opts.Config,
		Metrics: opts.Metrics,
		Limiter: rate.NewLimiter(rate.Every(3*time.Second), 5),
	}

	if opts.Config.Telegram.Token == "" || opts.Config.Telegram.Channel == "" {
		tg.Logger.Info("Telegram mirror disabled")
		return tg, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		tg.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}
	tg.TgBot = tgBot
	tg.Logger.Info("Telegram mirror enabled", "bot", tgBot.Self.UserName, "channel", opts.Config.Telegram.Channel)

	return tg, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)

func (tg *TelegramImpl) Enabled() bool {
	return tg.TgBot != nil
}
