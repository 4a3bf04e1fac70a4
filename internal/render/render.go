package render

import (
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

var (
	// ErrAssetMissing is logged when a font or icon falls back. It never aborts a render.
	ErrAssetMissing = errors.NewWithCode(errors.CodeAssetMissing, "asset missing")
	// ErrRenderFailure aborts the single render it occurred in.
	ErrRenderFailure = errors.NewWithCode(errors.CodeRenderFailure, "render failure")
)

//go:generate go run go.uber.org/mock/mockgen -source=render.go -destination=mocks/mock.go

type Client interface {
	// Render composes and encodes one screenshot. It either returns a complete
	// image or an error; it never returns a partial result.
	Render(req domain.PostRequest) (domain.RenderedImage, error)
}
