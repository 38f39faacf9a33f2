package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"docsai/internal/config"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAI(config.OpenAIConfig{
		APIKey:      "sk-test-1234567890",
		Model:       "gpt-3.5-turbo",
		BaseURL:     srv.URL + "/v1",
		Temperature: 0.7,
		MaxTokens:   1000,
	}, nil)
}

func TestOpenAI_Generate(t *testing.T) {
	var got map[string]any
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-1234567890", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],"usage":{"total_tokens":5}}`))
	})

	text, err := gw.Generate(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.Equal(t, "gpt-3.5-turbo", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 0.0001)
	assert.Equal(t, float64(1000), got["max_tokens"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.Equal(t, "hi", messages[0].(map[string]any)["content"])
}

func TestOpenAI_GenerateNoChoices(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	})

	text, err := gw.Generate(context.Background(), "hi")

	assert.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestOpenAI_GenerateUpstreamError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})

	_, err := gw.Generate(context.Background(), "hi")

	require.Error(t, err)
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusTooManyRequests, ce.StatusCode)
	assert.Equal(t, "Rate limit reached", ce.Error())
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))
}

func TestOpenAI_MissingKey(t *testing.T) {
	gw := NewOpenAI(config.OpenAIConfig{}, nil)

	_, err := gw.Generate(context.Background(), "hi")

	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, KeyStatus{}, gw.Status())
}

func TestOpenAI_Status(t *testing.T) {
	gw := NewOpenAI(config.OpenAIConfig{APIKey: "sk-abcdefghijk"}, nil)
	assert.Equal(t, KeyStatus{HasKey: true, KeyPreview: "sk-abcd"}, gw.Status())

	short := NewOpenAI(config.OpenAIConfig{APIKey: "sk"}, nil)
	assert.Equal(t, KeyStatus{HasKey: true, KeyPreview: "sk"}, short.Status())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 500, StatusCode(errors.New("plain")))
	assert.Equal(t, 500, StatusCode(&Error{StatusCode: 0}))
	assert.Equal(t, 401, StatusCode(&Error{StatusCode: 401}))
	assert.Equal(t, 502, StatusCode(&Error{StatusCode: 502}))
}

func TestNewHTTPClient_TracesUpstreamCall(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newHTTPClient(otelhttp.WithTracerProvider(tp), otelhttp.WithPropagators(propagation.TraceContext{}))
	assert.Equal(t, 60*time.Second, client.Timeout)
	assert.IsType(t, &otelhttp.Transport{}, client.Transport)

	ctx, parent := tp.Tracer("docsai-test").Start(context.Background(), "POST /api/generate")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/v1/chat/completions", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	parent.End()

	var upstream sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.SpanKind() == trace.SpanKindClient {
			upstream = s
		}
	}
	require.NotNil(t, upstream, "no client span recorded")
	assert.Equal(t, parent.SpanContext().TraceID(), upstream.SpanContext().TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), upstream.Parent().SpanID())
	assert.Contains(t, traceparent, upstream.SpanContext().SpanID().String())
}
