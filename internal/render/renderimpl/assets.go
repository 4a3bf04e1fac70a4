package renderimpl

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/render"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	regularFontFile = "Inter-Regular.ttf"
	boldFontFile    = "Inter-Bold.ttf"
	badgeFile       = "twitter_verified_badge.png"
)

type iconKind int

const (
	iconReply iconKind = iota
	iconRetweet
	iconLike
	iconViews
)

var iconFiles = [...]string{
	iconReply:   "reply.png",
	iconRetweet: "retweet.png",
	iconLike:    "like.png",
	iconViews:   "views.png",
}

// Assets are loaded once and shared read-only by every render. Parsed fonts
// are safe to share; faces are not, so faces are created per render.
type Assets struct {
	Regular *truetype.Font
	Bold    *truetype.Font
	// Icons are pre-scaled to iconSize; a nil entry draws a placeholder.
	Icons [len(iconFiles)]image.Image
	// Badge is pre-scaled to badgeSize; nil omits the badge.
	Badge image.Image
}

// LoadAssets reads fonts and icons from disk. Anything missing or unreadable
// is logged and left nil so rendering falls back instead of failing.
func LoadAssets(fontsDir, iconsDir string, log logger.Logger, m *metrics.Metrics) Assets {
	var a Assets

	missing := func(asset, path string, err error) {
		log.Warn("Render asset unavailable, using fallback",
			"asset", asset, "path", path,
			"error", errors.Wrap(render.ErrAssetMissing, err.Error()))
		m.ObserveAssetFallback(asset)
	}

	var err error
	regularPath := filepath.Join(fontsDir, regularFontFile)
	if a.Regular, err = loadFont(regularPath); err != nil {
		missing("font_regular", regularPath, err)
	}
	boldPath := filepath.Join(fontsDir, boldFontFile)
	if a.Bold, err = loadFont(boldPath); err != nil {
		missing("font_bold", boldPath, err)
		a.Bold = a.Regular
	}

	for kind, name := range iconFiles {
		path := filepath.Join(iconsDir, name)
		icon, err := loadScaled(path, iconSize)
		if err != nil {
			missing("icon_"+name, path, err)
			continue
		}
		a.Icons[kind] = icon
	}

	badgePath := filepath.Join(iconsDir, badgeFile)
	if a.Badge, err = loadScaled(badgePath, badgeSize); err != nil {
		missing("badge", badgePath, err)
	}

	return a
}

func loadFont(path string) (*truetype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(b)
}

func loadScaled(path string, size int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return scale(src, size), nil
}

func scale(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// face returns a new face for f, or the built-in bitmap face when f is nil.
func face(f *truetype.Font, size float64) font.Face {
	if f == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

// faces is the per-render set of type faces.
type faces struct {
	name       font.Face
	handle     font.Face
	body       font.Face
	timestamp  font.Face
	statNumber font.Face
	statLabel  font.Face
	button     font.Face
	initials   font.Face
	iconNumber font.Face
}

func (a Assets) faces() faces {
	return faces{
		name:       face(a.Bold, 15),
		handle:     face(a.Regular, 15),
		body:       face(a.Regular, 15),
		timestamp:  face(a.Regular, 15),
		statNumber: face(a.Bold, 14),
		statLabel:  face(a.Regular, 14),
		button:     face(a.Bold, 14),
		initials:   face(a.Bold, 20),
		iconNumber: face(a.Regular, 13),
	}
}
