package agentimpl

import (
	"context"

	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/internal/notify"
	"github.com/orgball2608/tweet-screenshot-agent/internal/parser"
	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

const workingText = "Generating the tweet screenshot..."

// SendMessage renders one screenshot for the newest command in the message.
// Non-blocking requests with a push URL return a working task at once and
// deliver the final task to the webhook.
func (a *AgentImpl) SendMessage(ctx context.Context, params protocol.MessageParams) (*protocol.Task, error) {
	msg := params.Message
	taskID := orNewID(msg.TaskID)
	contextID := orNewID(msg.ContextID)
	msg.TaskID, msg.ContextID = taskID, contextID
	cfg := a.defaults.Merge(params.Configuration)

	if !cfg.IsBlocking() {
		if push := cfg.PushNotificationConfig; push != nil && push.URL != "" {
			return a.sendInBackground(ctx, msg, cfg, notify.Target{URL: push.URL, Token: push.Token}), nil
		}
		a.Logger.Debug("Non-blocking request without push config, answering inline", "task_id", taskID)
	}

	return a.respond(ctx, msg, cfg)
}

func (a *AgentImpl) sendInBackground(ctx context.Context, msg protocol.Message, cfg protocol.MessageConfiguration, target notify.Target) *protocol.Task {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)

	a.spawn("message/send", func() {
		defer cancel()

		task, err := a.respond(bg, msg, cfg)
		if err != nil {
			a.Logger.Error("Background render failed", "task_id", msg.TaskID, "error", err)
			task = a.failedTask(msg, "Internal error: "+errors.GetMessage(err))
		}
		if err := a.Notifier.Notify(bg, target, task); err != nil {
			a.Logger.Error("Failed to deliver task to webhook", "task_id", msg.TaskID, "error", err)
		}
	})

	working := protocol.AgentMessage(msg.TaskID, msg.ContextID, protocol.TextPart(workingText))
	return &protocol.Task{
		ID:        msg.TaskID,
		ContextID: msg.ContextID,
		Status:    protocol.NewStatus(protocol.StateWorking, &working, a.now()),
		Artifacts: []protocol.Artifact{},
		History:   []protocol.Message{msg},
		Kind:      protocol.KindTask,
	}
}

func (a *AgentImpl) respond(ctx context.Context, msg protocol.Message, cfg protocol.MessageConfiguration) (*protocol.Task, error) {
	req, ok, err := a.extract(msg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return a.failedTask(msg, parser.Guidance), nil
	}

	out, err := a.produce(ctx, req)
	if err != nil {
		return nil, err
	}

	reply := a.reply(msg.TaskID, msg.ContextID, "Generated Twitter screenshot for @"+req.Username, out.url, cfg)
	return &protocol.Task{
		ID:        msg.TaskID,
		ContextID: msg.ContextID,
		Status:    protocol.NewStatus(protocol.StateInputRequired, &reply, a.now()),
		Artifacts: []protocol.Artifact{artifact(req.Username, out.url, cfg)},
		History:   []protocol.Message{msg, reply},
		Kind:      protocol.KindTask,
	}, nil
}

// extract resolves the request in msg. ok is false when the message carries
// no usable tweet content.
func (a *AgentImpl) extract(msg protocol.Message) (domain.PostRequest, bool, error) {
	draft, err := a.Parser.Extract(fragments(msg.Parts))
	if errors.Is(err, parser.ErrNoMatch) {
		return domain.PostRequest{}, false, nil
	}
	if err != nil {
		return domain.PostRequest{}, false, err
	}

	req, err := draft.Resolve()
	if errors.Is(err, domain.ErrMissingContent) {
		return domain.PostRequest{}, false, nil
	}
	return req, err == nil, err
}

type rendered struct {
	image domain.RenderedImage
	url   string
}

// produce renders req, stores the bytes and metadata, and mirrors the result.
func (a *AgentImpl) produce(ctx context.Context, req domain.PostRequest) (rendered, error) {
	img, err := a.Renderer.Render(req)
	if err != nil {
		return rendered{}, err
	}

	if err := a.Store.Set(ctx, cache.ImageKey(img.ID), img.Bytes, a.Config.Render.ImageTTL); err != nil {
		return rendered{}, errors.Wrap(err, "failed to store image")
	}

	record := domain.PostRecord{
		ImageID:   img.ID,
		Request:   req,
		Width:     img.Width,
		Height:    img.Height,
		CreatedAt: a.now(),
	}
	if err := a.Posts.Create(ctx, record); err != nil {
		a.Logger.Warn("Failed to store post metadata", "image_id", img.ID, "error", err)
	}

	a.mirror(img, req)

	a.Logger.Info("Rendered tweet screenshot",
		"image_id", img.ID,
		"username", req.Username,
		"width", img.Width,
		"height", img.Height)

	return rendered{image: img, url: a.imageURL(img.ID)}, nil
}

func (a *AgentImpl) mirror(img domain.RenderedImage, req domain.PostRequest) {
	if a.Telegram == nil || !a.Telegram.Enabled() {
		return
	}
	a.spawn("telegram mirror", func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := a.Telegram.SendScreenshotToChannel(ctx, img, req); err != nil {
			a.Logger.Warn("Telegram mirror failed", "image_id", img.ID, "error", err)
		}
	})
}

func (a *AgentImpl) failedTask(msg protocol.Message, text string) *protocol.Task {
	reply := protocol.AgentMessage(msg.TaskID, msg.ContextID, protocol.TextPart(text))
	return &protocol.Task{
		ID:        msg.TaskID,
		ContextID: msg.ContextID,
		Status:    protocol.NewStatus(protocol.StateFailed, &reply, a.now()),
		Artifacts: []protocol.Artifact{},
		History:   []protocol.Message{msg, reply},
		Kind:      protocol.KindTask,
	}
}

// reply carries the image as a file part when the caller accepts PNG output,
// otherwise the URL is folded into the text.
func (a *AgentImpl) reply(taskID, contextID, text, url string, cfg protocol.MessageConfiguration) protocol.Message {
	if cfg.AcceptsImages() {
		return protocol.AgentMessage(taskID, contextID, protocol.TextPart(text), protocol.FilePart(url))
	}
	return protocol.AgentMessage(taskID, contextID, protocol.TextPart(text+": "+url))
}

func artifact(username, url string, cfg protocol.MessageConfiguration) protocol.Artifact {
	part := protocol.TextPart(url)
	if cfg.AcceptsImages() {
		part = protocol.FilePart(url)
	}
	return protocol.Artifact{
		ArtifactID: protocol.NewID(),
		Name:       "twitter_screenshot_" + username + ".png",
		Parts:      []protocol.Part{part},
	}
}

// fragments converts message parts into the parser's fragment tree. File
// parts carry no tweet content and are dropped.
func fragments(parts []protocol.Part) []parser.Fragment {
	out := make([]parser.Fragment, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case protocol.KindText:
			if p.Text != "" {
				out = append(out, parser.Text(p.Text))
			}
		case protocol.KindData:
			if p.Data != nil {
				out = append(out, parser.FromValue(p.Data))
			}
		}
	}
	return out
}

func orNewID(id string) string {
	if id == "" {
		return protocol.NewID()
	}
	return id
}
