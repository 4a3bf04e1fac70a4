package renderimpl

import (
	"image/color"
	"strings"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/formatter"
	"golang.org/x/image/font"
)

const (
	canvasWidth  = 598
	padding      = 16
	contentWidth = canvasWidth - 2*padding

	avatarSize = 48
	nameX      = padding + avatarSize + 12
	nameY      = padding + 2
	handleGap  = 20
	badgeSize  = 16
	badgeGap   = 6

	buttonWidth  = 80
	buttonHeight = 32
	buttonX      = canvasWidth - padding - buttonWidth
	buttonY      = padding

	bodyTop        = padding + avatarSize + 12
	bodyLineHeight = 20

	timestampGap = 12
	dividerGap   = 28
	rowGap       = 12
	statsGap     = 20
	statsLabel   = 4

	iconSize     = 20
	iconInset    = 5
	iconCountGap = 6
	iconSpacing  = contentWidth / len(iconFiles)

	bottomMargin = 35

	timestampLayout = "3:04 PM · Jan 2, 2006"
)

var (
	colorBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorText       = color.RGBA{R: 15, G: 20, B: 25, A: 255}
	colorSecondary  = color.RGBA{R: 83, G: 100, B: 113, A: 255}
	colorBorder     = color.RGBA{R: 239, G: 243, B: 244, A: 255}
	colorAvatar     = color.RGBA{R: 207, G: 217, B: 222, A: 255}
	colorAccent     = color.RGBA{R: 29, G: 155, B: 240, A: 255}
	colorOnAccent   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// cursor is the vertical position while composing one card. Each section
// reads it and advances it; nothing outlives the render call.
type cursor struct {
	y float64
}

func (c *cursor) advance(dy float64) float64 {
	c.y += dy
	return c.y
}

// stat is one entry in the engagement summary row.
type stat struct {
	number string
	label  string
}

// statRow lists the non-zero summary counters in display order.
func statRow(req domain.PostRequest) []stat {
	var row []stat
	add := func(n int64, label string) {
		if n > 0 {
			row = append(row, stat{number: formatter.FormatCount(n), label: label})
		}
	}
	add(req.Retweets, "Retweets")
	add(req.Likes, "Likes")
	add(req.Replies, "Replies")
	return row
}

// iconSlot is one action in the bottom icon bar.
type iconSlot struct {
	kind  iconKind
	count string
}

func iconBar(req domain.PostRequest) [len(iconFiles)]iconSlot {
	count := func(n int64) string {
		if n > 0 {
			return formatter.FormatCount(n)
		}
		return ""
	}
	return [len(iconFiles)]iconSlot{
		{kind: iconReply, count: count(req.Replies)},
		{kind: iconRetweet, count: count(req.Retweets)},
		{kind: iconLike, count: count(req.Likes)},
		{kind: iconViews, count: count(req.Views)},
	}
}

// initials are the first letters of the first two words, upper-cased.
func initials(displayName string) string {
	words := strings.Fields(displayName)
	var b strings.Builder
	for i, w := range words {
		if i == 2 {
			break
		}
		b.WriteString(strings.ToUpper(string([]rune(w)[0])))
	}
	return b.String()
}

// cardHeight is the final canvas height for a body of the given line count.
func cardHeight(lines int) int {
	c := cursor{y: bodyTop}
	c.advance(float64(lines * bodyLineHeight))
	c.advance(timestampGap)
	c.advance(dividerGap)
	c.advance(rowGap)
	c.advance(dividerGap)
	c.advance(rowGap)
	return int(c.advance(bottomMargin))
}

func measure(f font.Face) func(string) float64 {
	return func(s string) float64 {
		return float64(font.MeasureString(f, s)) / 64
	}
}

func ascent(f font.Face) float64 {
	return float64(f.Metrics().Ascent) / 64
}

func textHeight(f font.Face) float64 {
	m := f.Metrics()
	return float64(m.Ascent+m.Descent) / 64
}
