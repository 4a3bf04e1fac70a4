package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.ObserveParse("saying")
	m.ObserveRender(time.Millisecond, nil)
	m.ObserveAssetFallback("font")
	m.ObserveRPC("message/send", 0, time.Millisecond)
	m.ObserveNotification("webhook", errors.New("x"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveParse("saying")
	m.ObserveParse("saying")
	m.ObserveRender(10*time.Millisecond, nil)
	m.ObserveRender(10*time.Millisecond, errors.New("encode"))
	m.ObserveRPC("execute", -32601, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.parses.WithLabelValues("saying")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcCalls.WithLabelValues("execute", "method_not_found")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveParse("verbatim")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tweet_agent_parse_total{matcher="verbatim"} 1`)
}
