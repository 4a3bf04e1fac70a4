package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/tweet-screenshot-agent/internal/agent"
	mock_agent "github.com/orgball2608/tweet-screenshot-agent/internal/agent/mocks"
	"github.com/orgball2608/tweet-screenshot-agent/internal/cache"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/protocol"
	"github.com/orgball2608/tweet-screenshot-agent/internal/ratelimit"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/errors"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, limiter ratelimit.Limiter) (http.Handler, *mock_agent.MockClient) {
	t.Helper()
	a := mock_agent.NewMockClient(gomock.NewController(t))
	s := &Server{
		Agent:   a,
		Logger:  logger.New(logger.Opts{Output: io.Discard}),
		Limiter: limiter,
		Metrics: metrics.New(),
	}
	return s.Routes(), a
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInfo(t *testing.T) {
	h, a := newTestServer(t, nil)
	a.EXPECT().Info().Return(agent.Info{
		AgentName: "tweet-screenshot-agent",
		AgentID:   "agent-1",
		Status:    "online",
		Protocol:  "a2a-jsonrpc-2.0",
	})

	rec := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"agent_name":"tweet-screenshot-agent","agent_id":"agent-1","status":"online","protocol":"a2a-jsonrpc-2.0"}`,
		rec.Body.String())
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestImage(t *testing.T) {
	h, a := newTestServer(t, nil)
	a.EXPECT().Image(gomock.Any(), "tweet_abc.png").Return([]byte("\x89PNG"), nil)

	rec := do(h, http.MethodGet, "/image/tweet_abc.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestImage_NotFound(t *testing.T) {
	h, a := newTestServer(t, nil)
	a.EXPECT().Image(gomock.Any(), "gone.png").Return(nil, errors.Wrap(cache.ErrNotFound, "image:gone.png"))

	rec := do(h, http.MethodGet, "/image/gone.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Image not found"}`, rec.Body.String())
}

func TestImage_StoreFailure(t *testing.T) {
	h, a := newTestServer(t, nil)
	a.EXPECT().Image(gomock.Any(), "x.png").Return(nil, cache.ErrStoreFailure)

	rec := do(h, http.MethodGet, "/image/x.png", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestA2A_DispatchesToAgent(t *testing.T) {
	h, a := newTestServer(t, nil)
	a.EXPECT().Handle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req protocol.Request) protocol.Response {
			assert.Equal(t, protocol.MethodExecute, req.Method)
			assert.JSONEq(t, `7`, string(req.ID))
			return protocol.Failure(req.ID, protocol.CodeMethodNotFound, "Method not found: x", nil)
		})

	rec := do(h, http.MethodPost, "/a2a", `{"jsonrpc":"2.0","id":7,"method":"execute","params":{"messages":[]}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp protocol.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeMethodNotFound, resp.Error.Code)
}

func TestA2A_ParseError(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(h, http.MethodPost, "/a2a", `{"jsonrpc":`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["id"])
	errObj := resp["error"].(map[string]any)
	assert.Equal(t, float64(protocol.CodeParseError), errObj["code"])
	assert.Equal(t, "Parse error", errObj["message"])
}

func TestA2A_RateLimited(t *testing.T) {
	h, a := newTestServer(t, ratelimit.NewInMemoryLimiter(1, time.Hour, 1))
	a.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(protocol.Response{JSONRPC: protocol.Version}).Times(1)

	body := `{"jsonrpc":"2.0","id":1,"method":"execute","params":{"messages":[]}}`
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/a2a", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/a2a", body).Code)

	// Limits apply to /a2a only.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
