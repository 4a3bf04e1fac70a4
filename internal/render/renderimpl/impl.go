package renderimpl

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/render"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/image/font"
)

var _ render.Client = (*RendererImpl)(nil)

type Opts struct {
	fx.In

	Config  *config.Config
	Logger  logger.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type RendererImpl struct {
	Assets  Assets
	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Now supplies the default timestamp. NewID supplies image identifiers.
	Now   func() time.Time
	NewID func() string
}

func New(opts Opts) *RendererImpl {
	log := opts.Logger.WithComponent("Renderer")
	return &RendererImpl{
		Assets:  LoadAssets(opts.Config.Render.FontsDir, opts.Config.Render.IconsDir, log, opts.Metrics),
		Logger:  log,
		Metrics: opts.Metrics,
		Now:     time.Now,
		NewID:   NewImageID,
	}
}

// NewImageID returns a fresh image name such as "tweet_3f2a....png".
func NewImageID() string {
	return "tweet_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".png"
}

func (r *RendererImpl) Render(req domain.PostRequest) (img domain.RenderedImage, err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = errors.Wrap(render.ErrRenderFailure, fmt.Sprintf("panic: %v", p))
			img = domain.RenderedImage{}
		}
		r.Metrics.ObserveRender(time.Since(start), err)
		if err != nil {
			r.Logger.Error("Render failed", "username", req.Username, "error", err)
		}
	}()

	if strings.TrimSpace(req.BodyText) == "" {
		return domain.RenderedImage{}, domain.ErrMissingContent
	}

	f := r.Assets.faces()
	lines := wrap(req.BodyText, contentWidth, measure(f.body))
	height := cardHeight(len(lines))

	dc := gg.NewContext(canvasWidth, height)
	dc.SetColor(colorBackground)
	dc.Clear()

	r.drawAvatar(dc, f, req)
	r.drawNameRow(dc, f, req)
	drawFollowButton(dc, f)
	drawText(dc, f.handle, colorSecondary, "@"+req.Username, nameX, nameY+handleGap)

	c := &cursor{y: bodyTop}
	for _, line := range lines {
		drawText(dc, f.body, colorText, line, padding, c.y)
		c.advance(bodyLineHeight)
	}

	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = r.Now().Format(timestampLayout)
	}
	drawText(dc, f.timestamp, colorSecondary, timestamp, padding, c.advance(timestampGap))

	drawDivider(dc, c.advance(dividerGap))
	drawStats(dc, f, statRow(req), c.advance(rowGap))

	drawDivider(dc, c.advance(dividerGap))
	r.drawIconBar(dc, f, iconBar(req), c.advance(rowGap))

	final := int(c.advance(bottomMargin))
	if final > height {
		return domain.RenderedImage{}, errors.Wrap(render.ErrRenderFailure,
			fmt.Sprintf("layout overflow: drew %d of %d rows", final, height))
	}

	canvas, ok := dc.Image().(*image.RGBA)
	if !ok {
		return domain.RenderedImage{}, errors.Wrap(render.ErrRenderFailure, "unexpected canvas type")
	}
	cropped := canvas.SubImage(image.Rect(0, 0, canvasWidth, final))

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, cropped); err != nil {
		return domain.RenderedImage{}, errors.Wrap(render.ErrRenderFailure, err.Error())
	}

	return domain.RenderedImage{
		ID:     r.NewID(),
		Bytes:  buf.Bytes(),
		Width:  canvasWidth,
		Height: final,
	}, nil
}

func (r *RendererImpl) drawAvatar(dc *gg.Context, f faces, req domain.PostRequest) {
	radius := float64(avatarSize) / 2
	cx, cy := padding+radius, padding+radius

	dc.DrawCircle(cx, cy, radius)
	dc.SetColor(colorAvatar)
	dc.FillPreserve()
	dc.SetColor(colorBorder)
	dc.SetLineWidth(1)
	dc.Stroke()

	text := initials(req.DisplayName)
	if text == "" {
		return
	}
	w := measure(f.initials)(text)
	h := textHeight(f.initials)
	drawText(dc, f.initials, colorOnAccent, text, cx-w/2, cy-h/2)
}

func (r *RendererImpl) drawNameRow(dc *gg.Context, f faces, req domain.PostRequest) {
	drawText(dc, f.name, colorText, req.DisplayName, nameX, nameY)
	if !req.Verified {
		return
	}
	if r.Assets.Badge == nil {
		r.Logger.Debug("Verified badge omitted, asset unavailable", "username", req.Username)
		return
	}
	x := nameX + measure(f.name)(req.DisplayName) + badgeGap
	y := nameY + (textHeight(f.name)-badgeSize)/2
	dc.DrawImage(r.Assets.Badge, int(x), int(y))
}

func drawFollowButton(dc *gg.Context, f faces) {
	dc.DrawRoundedRectangle(buttonX, buttonY, buttonWidth, buttonHeight, buttonHeight/2)
	dc.SetColor(colorAccent)
	dc.Fill()

	const label = "Follow"
	w := measure(f.button)(label)
	h := textHeight(f.button)
	drawText(dc, f.button, colorOnAccent, label, buttonX+(buttonWidth-w)/2, buttonY+(buttonHeight-h)/2)
}

func drawStats(dc *gg.Context, f faces, row []stat, y float64) {
	x := float64(padding)
	for _, s := range row {
		numW := measure(f.statNumber)(s.number)
		labelW := measure(f.statLabel)(s.label)
		drawText(dc, f.statNumber, colorText, s.number, x, y)
		drawText(dc, f.statLabel, colorSecondary, s.label, x+numW+statsLabel, y)
		x += numW + labelW + statsGap
	}
}

func (r *RendererImpl) drawIconBar(dc *gg.Context, f faces, slots [len(iconFiles)]iconSlot, y float64) {
	for i, slot := range slots {
		x := float64(padding + i*iconSpacing + iconInset)
		if icon := r.Assets.Icons[slot.kind]; icon != nil {
			dc.DrawImage(icon, int(x), int(y))
		} else {
			drawIconPlaceholder(dc, x, y)
		}
		if slot.count != "" {
			drawText(dc, f.iconNumber, colorSecondary, slot.count, x+iconSize+iconCountGap, y+2)
		}
	}
}

func drawIconPlaceholder(dc *gg.Context, x, y float64) {
	const half = iconSize / 2
	dc.DrawCircle(x+half, y+half, half-1)
	dc.SetColor(colorSecondary)
	dc.SetLineWidth(2)
	dc.Stroke()
}

func drawDivider(dc *gg.Context, y float64) {
	dc.DrawLine(padding, y, canvasWidth-padding, y)
	dc.SetColor(colorBorder)
	dc.SetLineWidth(1)
	dc.Stroke()
}

// drawText draws s with its top edge at y.
func drawText(dc *gg.Context, face font.Face, c color.Color, s string, x, y float64) {
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(s, x, y+ascent(face))
}
