package domain

import (
	"testing"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestResolve_Defaults(t *testing.T) {
	req, err := PostDraft{BodyText: ptr("  hello  ")}.Resolve()
	require.NoError(t, err)

	assert.Equal(t, PostRequest{
		Username:    "user",
		DisplayName: "User",
		BodyText:    "hello",
	}, req)
}

func TestResolve_MissingBody(t *testing.T) {
	_, err := PostDraft{Username: ptr("alice")}.Resolve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingContent))

	_, err = PostDraft{BodyText: ptr("   ")}.Resolve()
	assert.True(t, errors.Is(err, ErrMissingContent))
}

func TestResolve_NormalizesUsername(t *testing.T) {
	req, err := PostDraft{Username: ptr("@Carol"), BodyText: ptr("hi")}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "carol", req.Username)
	assert.Equal(t, "Carol", req.DisplayName)
}

func TestResolve_ClampsNegativeCounts(t *testing.T) {
	req, err := PostDraft{BodyText: ptr("hi"), Likes: ptr(int64(-4)), Views: ptr(int64(9))}.Resolve()
	require.NoError(t, err)
	assert.Zero(t, req.Likes)
	assert.Equal(t, int64(9), req.Views)
}

func TestMerge_OverrideWins(t *testing.T) {
	base := PostDraft{
		Username: ptr("alice"),
		BodyText: ptr("from text"),
		Likes:    ptr(int64(10)),
	}
	over := PostDraft{
		BodyText: ptr("from data"),
		Retweets: ptr(int64(3)),
	}

	merged := base.Merge(over)
	assert.Equal(t, "alice", *merged.Username)
	assert.Equal(t, "from data", *merged.BodyText)
	assert.Equal(t, int64(10), *merged.Likes)
	assert.Equal(t, int64(3), *merged.Retweets)
	assert.Nil(t, merged.Replies)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Alice", TitleCase("alice"))
	assert.Equal(t, "Jane Doe", TitleCase("jane DOE"))
	assert.Equal(t, "Alice_Smith", TitleCase("alice_smith"))
	assert.Equal(t, "Dev2Ops", TitleCase("dev2ops"))
	assert.Equal(t, "Élan", TitleCase("élan"))
}
