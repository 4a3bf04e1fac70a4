package parserimpl

import (
	"strings"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/parser"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Logger  logger.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type ParserImpl struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

func New(opts Opts) *ParserImpl {
	return &ParserImpl{
		Logger:  opts.Logger.WithComponent("Parser"),
		Metrics: opts.Metrics,
	}
}

var _ parser.Client = (*ParserImpl)(nil)

// Parse extracts the verified flag and engagement clauses independently, then
// tries the body matchers in priority order. The first match wins.
func (p *ParserImpl) Parse(text string) (domain.PostDraft, error) {
	var draft domain.PostDraft

	if strings.Contains(strings.ToLower(text), "verified") {
		verified := true
		draft.Verified = &verified
	}

	p.extractEngagement(text, &draft)

	for _, m := range bodyMatchers {
		c, ok := m.match(text)
		if !ok {
			continue
		}
		body := c.body
		draft.BodyText = &body
		if c.username != "" {
			username := strings.ToLower(c.username)
			displayName := domain.TitleCase(c.username)
			draft.Username = &username
			draft.DisplayName = &displayName
		}
		p.Logger.Debug("Parsed tweet request", "matcher", m.name, "username", c.username)
		p.Metrics.ObserveParse(m.name)
		return draft, nil
	}

	p.Metrics.ObserveParse("no_match")
	return domain.PostDraft{}, parser.ErrNoMatch
}

// Extract selects the newest usable utterance, keeps only its last command
// segment, parses it, and merges top-level structured parts over the result.
func (p *ParserImpl) Extract(parts []parser.Fragment) (domain.PostDraft, error) {
	var draft domain.PostDraft

	if text, ok := p.Select(parser.List(parts...)); ok {
		parsed, err := p.Parse(LastCommand(text))
		switch {
		case err == nil:
			draft = parsed
		case !errors.Is(err, parser.ErrNoMatch):
			return domain.PostDraft{}, err
		}
	}

	for _, part := range parts {
		if part.Kind != parser.FragmentData {
			continue
		}
		override, err := p.Overrides(part.Data)
		if err != nil {
			return domain.PostDraft{}, err
		}
		draft = draft.Merge(override)
	}

	if !draft.HasBody() {
		return domain.PostDraft{}, parser.ErrNoMatch
	}
	return draft, nil
}
