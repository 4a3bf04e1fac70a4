package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultUsername = "user"

var ErrMissingContent = errors.NewWithCode(errors.CodeNoMatch, "missing tweet content")

// PostRequest is the fully defaulted record handed to the renderer.
type PostRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	BodyText    string `json:"tweet_text"`
	Verified    bool   `json:"verified"`
	Likes       int64  `json:"likes"`
	Retweets    int64  `json:"retweets"`
	Replies     int64  `json:"replies"`
	Views       int64  `json:"views"`
	// Timestamp is shown verbatim; empty means "now" at render time.
	Timestamp string `json:"timestamp,omitempty"`
}

// PostDraft is a partially known PostRequest. Nil fields were not supplied,
// which keeps "omitted" distinct from an explicit zero while merging sources.
type PostDraft struct {
	Username    *string
	DisplayName *string
	BodyText    *string
	Verified    *bool
	Likes       *int64
	Retweets    *int64
	Replies     *int64
	Views       *int64
	Timestamp   *string
}

func (d PostDraft) HasBody() bool {
	return d.BodyText != nil && strings.TrimSpace(*d.BodyText) != ""
}

// Merge returns d with every field set in over taking precedence.
func (d PostDraft) Merge(over PostDraft) PostDraft {
	out := d
	if over.Username != nil {
		out.Username = over.Username
	}
	if over.DisplayName != nil {
		out.DisplayName = over.DisplayName
	}
	if over.BodyText != nil {
		out.BodyText = over.BodyText
	}
	if over.Verified != nil {
		out.Verified = over.Verified
	}
	if over.Likes != nil {
		out.Likes = over.Likes
	}
	if over.Retweets != nil {
		out.Retweets = over.Retweets
	}
	if over.Replies != nil {
		out.Replies = over.Replies
	}
	if over.Views != nil {
		out.Views = over.Views
	}
	if over.Timestamp != nil {
		out.Timestamp = over.Timestamp
	}
	return out
}

// Resolve applies the field defaults. It fails only when the body is missing.
func (d PostDraft) Resolve() (PostRequest, error) {
	if !d.HasBody() {
		return PostRequest{}, ErrMissingContent
	}

	req := PostRequest{
		Username: DefaultUsername,
		BodyText: strings.TrimSpace(*d.BodyText),
	}
	if d.Username != nil && strings.TrimSpace(*d.Username) != "" {
		req.Username = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(*d.Username)), "@")
	}
	if d.DisplayName != nil && strings.TrimSpace(*d.DisplayName) != "" {
		req.DisplayName = strings.TrimSpace(*d.DisplayName)
	} else {
		req.DisplayName = TitleCase(req.Username)
	}
	if d.Verified != nil {
		req.Verified = *d.Verified
	}
	req.Likes = nonNegative(d.Likes)
	req.Retweets = nonNegative(d.Retweets)
	req.Replies = nonNegative(d.Replies)
	req.Views = nonNegative(d.Views)
	if d.Timestamp != nil {
		req.Timestamp = strings.TrimSpace(*d.Timestamp)
	}
	return req, nil
}

func nonNegative(v *int64) int64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

var letterRun = regexp.MustCompile(`[\p{L}\p{M}]+`)

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "alice_smith" becomes "Alice_Smith".
func TitleCase(s string) string {
	caser := cases.Title(language.Und)
	return letterRun.ReplaceAllStringFunc(s, caser.String)
}

// RenderedImage is one encoded screenshot. The renderer keeps no copy.
type RenderedImage struct {
	ID     string
	Bytes  []byte
	Width  int
	Height int
}

// PostRecord is the metadata kept next to a cached image.
type PostRecord struct {
	ImageID   string      `json:"image_id"`
	Request   PostRequest `json:"request"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	CreatedAt time.Time   `json:"created_at"`
}
