package agent

import (
	"context"

	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
)

// Info is served on GET /.
type Info struct {
	AgentName string `json:"agent_name"`
	AgentID   string `json:"agent_id"`
	Status    string `json:"status"`
	Protocol  string `json:"protocol"`
}

//go:generate go run go.uber.org/mock/mockgen -source=agent.go -destination=mocks/mock.go

type Client interface {
	// Handle dispatches one JSON-RPC request. Failures are reported in the
	// response envelope, never as a Go error.
	Handle(ctx context.Context, req protocol.Request) protocol.Response

	SendMessage(ctx context.Context, params protocol.MessageParams) (*protocol.Task, error)
	Execute(ctx context.Context, params protocol.ExecuteParams) (*protocol.Task, error)

	// Image returns cached PNG bytes, or cache.ErrNotFound once expired.
	Image(ctx context.Context, imageID string) ([]byte, error)

	Info() Info
}
