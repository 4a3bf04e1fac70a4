package parserimpl

import (
	"regexp"
	"strings"
)

type capture struct {
	username string
	body     string
}

type bodyMatcher struct {
	name  string
	match func(text string) (capture, bool)
}

// Body boundary shared by the keyed matchers: everything up to the first
// " with " clause, or the end of the text.
const bodyTail = `(.+?)(?:\s+with\s+|\s*$)`

var (
	forSayingRe    = regexp.MustCompile(`(?is)\bfor\s+@?(\w+)\s+saying\s+` + bodyTail)
	sayingRe       = regexp.MustCompile(`(?is)\bsaying\s+` + bodyTail)
	commandPrefix  = regexp.MustCompile(`(?i)^(?:create|generate|make|tweet|post|verified)`)
	bareCommandRe  = regexp.MustCompile(`(?is)\b(?:create|generate|make)\s+(?:a\s+)?(?:verified\s+)?tweet\s+` + bodyTail)
	commandStartRe = regexp.MustCompile(`(?i)\b(?:create|generate|make)\s+(?:a\s+)?(?:verified\s+)?tweet\b`)
)

// bodyMatchers is ordered by priority.
var bodyMatchers = []bodyMatcher{
	{name: "for_saying", match: matchForSaying},
	{name: "saying", match: matchSaying},
	{name: "verbatim", match: matchVerbatim},
	{name: "bare_command", match: matchBareCommand},
}

func matchForSaying(text string) (capture, bool) {
	m := forSayingRe.FindStringSubmatch(text)
	if m == nil {
		return capture{}, false
	}
	body := strings.TrimSpace(m[2])
	if body == "" {
		return capture{}, false
	}
	return capture{username: m[1], body: body}, true
}

func matchSaying(text string) (capture, bool) {
	return bodyOnly(sayingRe, text)
}

// matchVerbatim treats text that does not open with a command keyword as the
// body itself. The keyword is a plain prefix, so "posting..." is not verbatim.
func matchVerbatim(text string) (capture, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || commandPrefix.MatchString(trimmed) {
		return capture{}, false
	}
	return capture{body: trimmed}, true
}

func matchBareCommand(text string) (capture, bool) {
	return bodyOnly(bareCommandRe, text)
}

func bodyOnly(re *regexp.Regexp, text string) (capture, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return capture{}, false
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return capture{}, false
	}
	return capture{body: body}, true
}

// LastCommand keeps only the final "create/generate/make [a] [verified] tweet"
// segment when several commands were concatenated into one message, so a later
// correction supersedes an earlier one.
func LastCommand(text string) string {
	idx := commandStartRe.FindAllStringIndex(text, -1)
	if len(idx) < 2 {
		return text
	}
	return text[idx[len(idx)-1][0]:]
}
