package agentimpl

import (
	"context"
	"encoding/json"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
)

var errMissingParams = errors.NewWithCode(errors.CodeInvalidRequest, "missing params")

func (a *AgentImpl) Handle(ctx context.Context, req protocol.Request) (resp protocol.Response) {
	start := time.Now()
	defer func() {
		code := 0
		if resp.Error != nil {
			code = resp.Error.Code
		}
		a.Metrics.ObserveRPC(methodLabel(req.Method), code, time.Since(start))
	}()

	if req.JSONRPC != protocol.Version {
		return protocol.Failure(req.ID, protocol.CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`, nil)
	}

	var (
		task *protocol.Task
		err  error
	)
	switch req.Method {
	case protocol.MethodMessageSend:
		var params protocol.MessageParams
		if err := decodeParams(req.Params, &params); err != nil {
			return protocol.Failure(req.ID, protocol.CodeInvalidParams, "Invalid params", err.Error())
		}
		task, err = a.SendMessage(ctx, params)
	case protocol.MethodExecute:
		var params protocol.ExecuteParams
		if err := decodeParams(req.Params, &params); err != nil {
			return protocol.Failure(req.ID, protocol.CodeInvalidParams, "Invalid params", err.Error())
		}
		task, err = a.Execute(ctx, params)
	default:
		return protocol.Failure(req.ID, protocol.CodeMethodNotFound, "Method not found: "+req.Method, nil)
	}

	if err != nil {
		return a.failure(req, err)
	}
	return protocol.Success(req.ID, task)
}

func (a *AgentImpl) failure(req protocol.Request, err error) protocol.Response {
	if errors.GetCode(err) == errors.CodeInvalidRequest {
		a.Logger.Warn("Rejected request params", "method", req.Method, "error", err)
		return protocol.Failure(req.ID, protocol.CodeInvalidParams, "Invalid params", err.Error())
	}
	a.Logger.Error("Request failed", "method", req.Method, "error", err)
	return protocol.Failure(req.ID, protocol.CodeInternalError, "Internal error: "+err.Error(), nil)
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errMissingParams
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidRequest, "malformed params")
	}
	return nil
}

func methodLabel(method string) string {
	switch method {
	case protocol.MethodMessageSend, protocol.MethodExecute:
		return method
	default:
		return "unknown"
	}
}
