package parserimpl

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/orgball2608/tweet-screenshot-agent/internal/parser"
)

const minUtteranceLength = 3

// noisePhrases are status lines the agent itself emits into the conversation.
var noisePhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)generating (?:the|your) tweet`),
	regexp.MustCompile(`(?i)creating (?:the|your) tweet`),
	regexp.MustCompile(`(?i)generating (?:the|your) screenshot`),
	regexp.MustCompile(`(?i)generated .*screenshot`),
	regexp.MustCompile(`(?i)missing tweet content`),
}

// Select walks the tree newest-first and stops at the first usable text leaf.
func (p *ParserImpl) Select(root parser.Fragment) (string, bool) {
	switch root.Kind {
	case parser.FragmentText:
		if usable(root.Text) {
			return strings.TrimSpace(root.Text), true
		}
	case parser.FragmentList:
		for i := len(root.Items) - 1; i >= 0; i-- {
			if text, ok := p.Select(root.Items[i]); ok {
				return text, true
			}
		}
	}
	return "", false
}

func usable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "<") {
		return false
	}
	if utf8.RuneCountInString(trimmed) < minUtteranceLength {
		return false
	}
	for _, re := range noisePhrases {
		if re.MatchString(trimmed) {
			return false
		}
	}
	return true
}
