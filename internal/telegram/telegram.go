package telegram

import (
	"context"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go

type Client interface {
	// Enabled reports whether a bot token and channel are configured.
	Enabled() bool

	// SendScreenshotToChannel posts the rendered image with a caption built from req.
	SendScreenshotToChannel(ctx context.Context, img domain.RenderedImage, req domain.PostRequest) error
}
