package telegramimpl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/formatter"
)

const captionLimit = 1024

// SendScreenshotToChannel sends a rendered screenshot to the configured Telegram channel
func (tg *TelegramImpl) SendScreenshotToChannel(ctx context.Context, img domain.RenderedImage, req domain.PostRequest) error {
	if !tg.Enabled() {
		return nil
	}

	if err := tg.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limiter: %w", err)
	}

	photo := photoToChannel(tg.Config.Telegram.Channel, tgbotapi.FileBytes{Name: img.ID, Bytes: img.Bytes})
	photo.Caption = Caption(req)
	photo.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := tg.TgBot.Send(photo)
	tg.Metrics.ObserveNotification("telegram", err)
	if err != nil {
		tg.Logger.Error("Error sending screenshot to channel",
			"channel", tg.Config.Telegram.Channel,
			"image_id", img.ID,
			"error", err)
		return fmt.Errorf("failed to send screenshot to channel: %w", err)
	}

	tg.Logger.Info("Successfully sent screenshot to channel",
		"channel", tg.Config.Telegram.Channel,
		"image_id", img.ID)
	return nil
}

// photoToChannel accepts either a numeric chat id or a public channel name.
func photoToChannel(channel string, file tgbotapi.RequestFileData) tgbotapi.PhotoConfig {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tgbotapi.NewPhoto(id, file)
	}
	return tgbotapi.NewPhotoToChannel("@"+strings.TrimPrefix(channel, "@"), file)
}

// Caption renders the MarkdownV2 caption for a screenshot.
func Caption(req domain.PostRequest) string {
	var b strings.Builder
	b.WriteString("*" + formatter.EscapeMarkdownV2(req.DisplayName) + "*")
	if req.Verified {
		b.WriteString(" ✔")
	}
	b.WriteString(" " + formatter.EscapeMarkdownV2("@"+req.Username))
	b.WriteString("\n\n")

	body := req.BodyText
	if r := []rune(body); len(r) > captionLimit/2 {
		body = string(r[:captionLimit/2]) + "…"
	}
	b.WriteString(formatter.EscapeMarkdownV2(body))

	var stats []string
	if req.Likes > 0 {
		stats = append(stats, formatter.FormatCount(req.Likes)+" likes")
	}
	if req.Retweets > 0 {
		stats = append(stats, formatter.FormatCount(req.Retweets)+" retweets")
	}
	if req.Replies > 0 {
		stats = append(stats, formatter.FormatCount(req.Replies)+" replies")
	}
	if len(stats) > 0 {
		b.WriteString("\n\n_" + formatter.EscapeMarkdownV2(strings.Join(stats, " · ")) + "_")
	}
	return b.String()
}
