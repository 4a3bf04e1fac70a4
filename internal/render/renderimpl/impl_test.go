package renderimpl

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.January, 5, 15, 4, 0, 0, time.Local)

func newTestRenderer(assets Assets) *RendererImpl {
	n := 0
	return &RendererImpl{
		Assets:  assets,
		Logger:  logger.New(logger.Opts{Output: io.Discard}),
		Metrics: metrics.New(),
		Now:     func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("tweet_%d.png", n)
		},
	}
}

func sampleRequest() domain.PostRequest {
	return domain.PostRequest{
		Username:    "alice",
		DisplayName: "Alice Smith",
		BodyText:    "hello world",
		Verified:    true,
		Likes:       1500,
		Retweets:    20,
		Replies:     0,
		Views:       2_300_000,
		Timestamp:   "9:41 AM · Mar 1, 2024",
	}
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return img
}

func writeSolidPNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRenderer(Assets{})
	req := sampleRequest()

	first, err := r.Render(req)
	require.NoError(t, err)
	second, err := r.Render(req)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes, second.Bytes)
	assert.Equal(t, first.Height, second.Height)
	assert.Equal(t, canvasWidth, first.Width)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRender_DefaultTimestampUsesClock(t *testing.T) {
	r := newTestRenderer(Assets{})

	explicit := sampleRequest()
	explicit.Timestamp = "3:04 PM · Jan 5, 2024"
	implicit := sampleRequest()
	implicit.Timestamp = ""

	a, err := r.Render(explicit)
	require.NoError(t, err)
	b, err := r.Render(implicit)
	require.NoError(t, err)

	assert.Equal(t, a.Bytes, b.Bytes)
}

func TestRender_CroppedToContent(t *testing.T) {
	r := newTestRenderer(Assets{})

	short := sampleRequest()
	out, err := r.Render(short)
	require.NoError(t, err)
	assert.Equal(t, cardHeight(1), out.Height)
	assert.Equal(t, 223, out.Height)

	img := decode(t, out.Bytes)
	assert.Equal(t, image.Rect(0, 0, canvasWidth, out.Height), img.Bounds())

	long := sampleRequest()
	long.BodyText = strings.Repeat("lorem ipsum dolor sit amet ", 40)
	tall, err := r.Render(long)
	require.NoError(t, err)
	assert.Greater(t, tall.Height, out.Height)
	assert.Equal(t, 0, (tall.Height-out.Height)%bodyLineHeight)
}

func TestRender_MissingBody(t *testing.T) {
	r := newTestRenderer(Assets{})

	req := sampleRequest()
	req.BodyText = "   "
	_, err := r.Render(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingContent))
}

func TestRender_MissingAssetsFallBack(t *testing.T) {
	log := logger.New(logger.Opts{Output: io.Discard})
	assets := LoadAssets(t.TempDir(), t.TempDir(), log, nil)

	assert.Nil(t, assets.Regular)
	assert.Nil(t, assets.Bold)
	assert.Nil(t, assets.Badge)
	for _, icon := range assets.Icons {
		assert.Nil(t, icon)
	}

	r := newTestRenderer(assets)
	out, err := r.Render(sampleRequest())
	require.NoError(t, err)

	img := decode(t, out.Bytes)
	iconY := cardHeight(1) - bottomMargin
	x := padding + iconInset

	// Placeholder is an outlined ring: painted edge, empty centre.
	edge := color.RGBAModel.Convert(img.At(x+iconSize/2, iconY+1)).(color.RGBA)
	centre := color.RGBAModel.Convert(img.At(x+iconSize/2, iconY+iconSize/2)).(color.RGBA)
	assert.Less(t, edge.R, uint8(200))
	assert.Equal(t, colorBackground, centre)
}

func TestRender_CompositesIcons(t *testing.T) {
	iconsDir := t.TempDir()
	red := color.RGBA{R: 255, A: 255}
	for _, name := range iconFiles {
		writeSolidPNG(t, filepath.Join(iconsDir, name), red)
	}
	writeSolidPNG(t, filepath.Join(iconsDir, badgeFile), red)

	log := logger.New(logger.Opts{Output: io.Discard})
	assets := LoadAssets(t.TempDir(), iconsDir, log, nil)
	require.NotNil(t, assets.Badge)
	assert.Equal(t, image.Rect(0, 0, iconSize, iconSize), assets.Icons[iconLike].Bounds())
	assert.Equal(t, image.Rect(0, 0, badgeSize, badgeSize), assets.Badge.Bounds())

	r := newTestRenderer(assets)
	out, err := r.Render(sampleRequest())
	require.NoError(t, err)

	img := decode(t, out.Bytes)
	iconY := cardHeight(1) - bottomMargin
	for i := range iconFiles {
		x := padding + i*iconSpacing + iconInset
		got := color.RGBAModel.Convert(img.At(x+iconSize/2, iconY+iconSize/2)).(color.RGBA)
		assert.Greater(t, got.R, uint8(240), "icon slot %d", i)
		assert.Less(t, got.G, uint8(16), "icon slot %d", i)
	}
}

func TestNewImageID(t *testing.T) {
	a, b := NewImageID(), NewImageID()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "tweet_"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotContains(t, a, "-")
	assert.Len(t, a, len("tweet_")+32+len(".png"))
}
