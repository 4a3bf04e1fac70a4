package notify

import (
	"context"

	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

var ErrRejected = errors.NewWithCode(errors.CodeInvalidRequest, "webhook rejected notification")

// Target is a caller-supplied push notification endpoint.
type Target struct {
	URL   string
	Token string
}

//go:generate go run go.uber.org/mock/mockgen -source=notify.go -destination=mocks/mock.go

type Client interface {
	// Notify POSTs payload as JSON to the target, retrying transient failures.
	Notify(ctx context.Context, target Target, payload any) error
}
