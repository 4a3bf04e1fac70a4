package formatter

import (
	"testing"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"100", 100},
		{"1k", 1_000},
		{"1K", 1_000},
		{"1.5k", 1_500},
		{"4.35k", 4_350},
		{"2m", 2_000_000},
		{"2.5M", 2_500_000},
		{"0.0015k", 1},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMagnitude(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMagnitude_Monotonic(t *testing.T) {
	prefixes := []string{"0", "0.5", "1", "1.25", "1.5", "2", "10", "99.9"}
	for _, suffix := range []string{"", "k", "m"} {
		var prev int64 = -1
		for _, p := range prefixes {
			got, err := ParseMagnitude(p + suffix)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, prev, "%s%s", p, suffix)
			prev = got
		}
	}
}

func TestParseMagnitude_FormatError(t *testing.T) {
	for _, in := range []string{"", "k", "abc", "1.2.3k", "1e3", "1/2", "5b", "1.k"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseMagnitude(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
			assert.Equal(t, errors.CodeFormat, errors.GetCode(err))
		})
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.0K", FormatCount(1_000))
	assert.Equal(t, "1.5K", FormatCount(1_500))
	assert.Equal(t, "999.9K", FormatCount(999_949))
	assert.Equal(t, "1.0M", FormatCount(1_000_000))
	assert.Equal(t, "2.5M", FormatCount(2_500_000))
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `@bob\_smith`, EscapeMarkdownV2("@bob_smith"))
	assert.Equal(t, `hello\!`, EscapeMarkdownV2("hello!"))
}
