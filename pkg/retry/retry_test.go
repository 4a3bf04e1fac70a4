package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	log := logger.New(logger.Opts{Output: io.Discard})
	attempts := 0

	err := Do(context.Background(), log, "flaky", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("boom")
		}
		return nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_GivesUp(t *testing.T) {
	log := logger.New(logger.Opts{Output: io.Discard})
	attempts := 0

	err := Do(context.Background(), log, "broken", func() error {
		attempts++
		return errors.New("boom")
	}, fastConfig())

	require.Error(t, err)
	assert.Equal(t, 4, attempts)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	log := logger.New(logger.Opts{Output: io.Discard})
	attempts := 0
	cause := errors.New("bad request")

	err := Do(context.Background(), log, "rejected", func() error {
		attempts++
		return Permanent(cause)
	}, fastConfig())

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1, attempts)
}
