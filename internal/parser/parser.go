package parser

import (
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

// ErrNoMatch means the text matched none of the recognised command shapes.
var ErrNoMatch = errors.NewWithCode(errors.CodeNoMatch, "no tweet content found")

// Guidance is the user-facing hint returned alongside ErrNoMatch.
const Guidance = "Missing tweet content. Try: create a tweet for alice saying hello world with 1.5k likes and 200 retweets"

//go:generate go run go.uber.org/mock/mockgen -source=parser.go -destination=mocks/mock.go

type Client interface {
	// Parse turns one utterance into a draft or returns ErrNoMatch.
	Parse(text string) (domain.PostDraft, error)
	// Select returns the newest usable utterance in the fragment tree.
	Select(root Fragment) (string, bool)
	// Overrides decodes a structured payload into a draft.
	Overrides(data map[string]any) (domain.PostDraft, error)
	// Extract resolves the draft for one inbound message: the selected
	// utterance is parsed and structured parts are merged on top.
	Extract(parts []Fragment) (domain.PostDraft, error)
}
