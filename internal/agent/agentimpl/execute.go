package agentimpl

import (
	"context"
	"sync"

	"github.com/orgball2608/tweet-screenshot-agent/internal/domain"
	"github.com/orgball2608/tweet-screenshot-agent/internal/parser"
	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
)

type executeResult struct {
	req domain.PostRequest
	out rendered
	ok  bool
	err error
}

// Execute renders one screenshot per message in the batch. Messages without
// tweet content are skipped; results keep the order of the input.
func (a *AgentImpl) Execute(ctx context.Context, params protocol.ExecuteParams) (*protocol.Task, error) {
	taskID := orNewID(params.TaskID)
	contextID := orNewID(params.ContextID)
	cfg := a.defaults.Merge(nil)

	results := make([]executeResult, len(params.Messages))

	var wg sync.WaitGroup
	for i, msg := range params.Messages {
		i, msg := i, msg
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				results[i] = executeResult{err: ctx.Err()}
				return
			}
			results[i] = a.executeOne(ctx, msg)
		})
		if err != nil {
			a.Logger.Warn("Failed to submit job to ants pool, running inline", "index", i, "error", err)
			results[i] = a.executeOne(ctx, msg)
			wg.Done()
		}
	}
	wg.Wait()

	var (
		artifacts []protocol.Artifact
		history   []protocol.Message
		last      *protocol.Message
	)
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if !r.ok {
			continue
		}
		reply := a.reply(taskID, contextID, "Generated screenshot for @"+r.req.Username, r.out.url, cfg)
		artifacts = append(artifacts, artifact(r.req.Username, r.out.url, cfg))
		history = append(history, reply)
		last = &history[len(history)-1]
	}

	if last == nil {
		a.Logger.Info("Execute batch had no tweet content", "task_id", taskID, "messages", len(params.Messages))
		return a.failedTask(protocol.Message{TaskID: taskID, ContextID: contextID}, parser.Guidance), nil
	}

	lastMsg := *last
	return &protocol.Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    protocol.NewStatus(protocol.StateInputRequired, &lastMsg, a.now()),
		Artifacts: artifacts,
		History:   history,
		Kind:      protocol.KindTask,
	}, nil
}

func (a *AgentImpl) executeOne(ctx context.Context, msg protocol.Message) executeResult {
	req, ok, err := a.extract(msg)
	if err != nil || !ok {
		return executeResult{err: err}
	}
	out, err := a.produce(ctx, req)
	if err != nil {
		return executeResult{err: err}
	}
	return executeResult{req: req, out: out, ok: true}
}
