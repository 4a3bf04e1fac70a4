package parserimpl

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/formatter"
)

// structuredPost lists the keys accepted in a data part. tweet_text and
// body_text are aliases.
type structuredPost struct {
	Username    *string `mapstructure:"username"`
	DisplayName *string `mapstructure:"display_name"`
	TweetText   *string `mapstructure:"tweet_text"`
	BodyText    *string `mapstructure:"body_text"`
	Verified    *bool   `mapstructure:"verified"`
	Likes       *int64  `mapstructure:"likes"`
	Retweets    *int64  `mapstructure:"retweets"`
	Replies     *int64  `mapstructure:"replies"`
	Views       *int64  `mapstructure:"views"`
	Timestamp   *string `mapstructure:"timestamp"`
}

var int64Type = reflect.TypeOf(int64(0))

// magnitudeHook lets structured counts use the same shorthand as free text ("1.5k").
func magnitudeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != int64Type {
		return data, nil
	}
	return formatter.ParseMagnitude(data.(string))
}

func (p *ParserImpl) Overrides(data map[string]any) (domain.PostDraft, error) {
	var payload structuredPost
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       magnitudeHook,
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return domain.PostDraft{}, err
	}
	if err := decoder.Decode(data); err != nil {
		return domain.PostDraft{}, errors.WrapWithCode(err, errors.CodeInvalidRequest, "invalid structured post data")
	}

	body := payload.TweetText
	if body == nil {
		body = payload.BodyText
	}

	return domain.PostDraft{
		Username:    payload.Username,
		DisplayName: payload.DisplayName,
		BodyText:    body,
		Verified:    payload.Verified,
		Likes:       payload.Likes,
		Retweets:    payload.Retweets,
		Replies:     payload.Replies,
		Views:       payload.Views,
		Timestamp:   payload.Timestamp,
	}, nil
}
