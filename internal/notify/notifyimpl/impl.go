package notifyimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/notify"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/retry"
	"go.uber.org/fx"
)

const channel = "webhook"

type Opts struct {
	fx.In

	Logger  logger.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type NotifierImpl struct {
	HTTP    *http.Client
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Retry   retry.Config
}

func New(opts Opts) *NotifierImpl {
	return &NotifierImpl{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Logger:  opts.Logger.WithComponent("Notifier"),
		Metrics: opts.Metrics,
		Retry:   retry.DefaultConfig(),
	}
}

var _ notify.Client = (*NotifierImpl)(nil)

func (n *NotifierImpl) Notify(ctx context.Context, target notify.Target, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidRequest, "failed to encode notification")
	}

	err = retry.Do(ctx, n.Logger, "webhook notify", func() error {
		return n.post(ctx, target, body)
	}, n.Retry)
	n.Metrics.ObserveNotification(channel, err)

	if err != nil {
		n.Logger.Error("Webhook notification failed", "url", target.URL, "error", err)
		return err
	}
	n.Logger.Info("Webhook notification delivered", "url", target.URL)
	return nil
}

func (n *NotifierImpl) post(ctx context.Context, target notify.Target, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(errors.WrapWithCode(err, errors.CodeInvalidRequest, "invalid webhook url"))
	}
	req.Header.Set("Content-Type", "application/json")
	if target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+target.Token)
	}

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	default:
		return retry.Permanent(errors.Wrap(notify.ErrRejected, fmt.Sprintf("status %d", resp.StatusCode)))
	}
}
