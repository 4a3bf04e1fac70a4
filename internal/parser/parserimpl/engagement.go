package parserimpl

import (
	"regexp"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/formatter"
)

const magnitude = `(\d+(?:\.\d+)?[km]?)`

var (
	likesRe    = regexp.MustCompile(`(?i)\bwith\s+` + magnitude + `\s+likes?\b`)
	retweetsRe = regexp.MustCompile(`(?i)\b` + magnitude + `\s+retweets?\b`)
	repliesRe  = regexp.MustCompile(`(?i)\b` + magnitude + `\s+repl(?:y|ies)\b`)
	viewsRe    = regexp.MustCompile(`(?i)\b` + magnitude + `\s+views?\b`)
)

// extractEngagement fills each metric whose clause appears anywhere in text.
// A clause whose numeral does not normalise is left unset.
func (p *ParserImpl) extractEngagement(text string, draft *domain.PostDraft) {
	draft.Likes = p.metric(likesRe, text, "likes")
	draft.Retweets = p.metric(retweetsRe, text, "retweets")
	draft.Replies = p.metric(repliesRe, text, "replies")
	draft.Views = p.metric(viewsRe, text, "views")
}

func (p *ParserImpl) metric(re *regexp.Regexp, text, name string) *int64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := formatter.ParseMagnitude(m[1])
	if err != nil {
		p.Logger.Debug("Ignoring malformed engagement clause", "metric", name, "token", m[1], "error", err)
		return nil
	}
	return &n
}
