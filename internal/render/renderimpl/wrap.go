package renderimpl

import "strings"

// wrap breaks text into lines greedily on whitespace. A word joins the
// current line while the joined width is at most maxWidth. A single word
// wider than maxWidth gets a line of its own and is never split.
func wrap(text string, maxWidth float64, measure func(string) float64) []string {
	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(text) {
		if current == "" {
			current = word
			continue
		}
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
