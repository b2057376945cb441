package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		MaxConnsPerHost: 10,
	}
}

func testBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      100 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func newRequest(t *testing.T, method, url string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	return req
}

func TestClient_RetriesGetOn5xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(testConfig())
	resp, err := c.Do(context.Background(), newRequest(t, http.MethodGet, server.URL, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NeverRetriesPost(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(testConfig())
	resp, err := c.Do(context.Background(), newRequest(t, http.MethodPost, server.URL, strings.NewReader(`{}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_DoesNotRetry501(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotImplemented)
	}))
	defer server.Close()

	resp, err := New(testConfig()).Do(context.Background(), newRequest(t, http.MethodGet, server.URL, nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(testConfig()).Do(context.Background(), newRequest(t, http.MethodGet, url, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestBreakerClient_TripsOn5xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 0
	cb := NewBreakerClient(New(cfg), testBreakerConfig("test-trip"), testLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Do(context.Background(), newRequest(t, http.MethodGet, server.URL, nil))
		var serverErr *ServerError
		require.ErrorAs(t, err, &serverErr)
		assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
		assert.Equal(t, "boom", serverErr.Body)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Do(context.Background(), newRequest(t, http.MethodGet, server.URL, nil))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBreakerClient_4xxIsNotAFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	cb := NewBreakerClient(New(testConfig()), testBreakerConfig("test-4xx"), testLogger())
	for i := 0; i < 5; i++ {
		resp, err := cb.Do(context.Background(), newRequest(t, http.MethodPost, server.URL, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreakerClient_Recovers(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 0
	cb := NewBreakerClient(New(cfg), testBreakerConfig("test-recover"), testLogger())
	for i := 0; i < 3; i++ {
		_, _ = cb.Do(context.Background(), newRequest(t, http.MethodGet, server.URL, nil))
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := cb.Do(context.Background(), newRequest(t, http.MethodGet, server.URL, nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreakerClient_InjectsTraceContext(t *testing.T) {
	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prevProp)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var traceparent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, span := tp.Tracer("test").Start(context.Background(), "outgoing")
	defer span.End()

	cb := NewBreakerClient(New(testConfig()), testBreakerConfig("test-trace"), testLogger())
	resp, err := cb.Do(ctx, newRequest(t, http.MethodGet, server.URL, nil))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig("backend")
	assert.Equal(t, "backend", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 0.5, cfg.FailureRatio)
}
