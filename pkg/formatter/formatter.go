package formatter

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

// ErrFormat is returned when a magnitude token has no parseable numeral.
var ErrFormat = errors.NewWithCode(errors.CodeFormat, "malformed magnitude")

var decimalRe = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d+)?|\.\d+)$`)

// ParseMagnitude converts shorthand counts such as "100", "1.5k" or "2M" to an integer.
// The multiplication is exact and the result is truncated toward zero.
func ParseMagnitude(s string) (int64, error) {
	token := strings.ToLower(strings.TrimSpace(s))

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(token, "k"):
		multiplier = 1_000
		token = strings.TrimSuffix(token, "k")
	case strings.HasSuffix(token, "m"):
		multiplier = 1_000_000
		token = strings.TrimSuffix(token, "m")
	}

	if !decimalRe.MatchString(token) {
		return 0, errors.Wrap(ErrFormat, "parse magnitude "+strconv.Quote(s))
	}

	value, ok := new(big.Rat).SetString(token)
	if !ok {
		return 0, errors.Wrap(ErrFormat, "parse magnitude "+strconv.Quote(s))
	}

	value.Mul(value, new(big.Rat).SetInt64(multiplier))
	// Quo truncates toward zero.
	n := new(big.Int).Quo(value.Num(), value.Denom())
	if !n.IsInt64() {
		return 0, errors.Wrap(ErrFormat, "magnitude out of range "+strconv.Quote(s))
	}
	return n.Int64(), nil
}

// FormatCount renders a metric the way the post card shows it.
// Example: 999 -> "999", 1000 -> "1.0K", 2500000 -> "2.5M"
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// EscapeMarkdownV2 escapes special characters in Markdown V2 format
func EscapeMarkdownV2(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
