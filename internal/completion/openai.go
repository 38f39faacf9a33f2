package completion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"docsai/internal/config"
)

// OpenAI is a Gateway backed by the OpenAI chat completions API.
type OpenAI struct {
	client      *openai.Client
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	log         *zap.Logger
}

var _ Gateway = (*OpenAI)(nil)

// NewOpenAI builds a gateway from cfg. BaseURL overrides the API endpoint
// (OpenAI-compatible servers, tests).
func NewOpenAI(cfg config.OpenAIConfig, log *zap.Logger) *OpenAI {
	if log == nil {
		log = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = newHTTPClient()

	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log.Named("completion"),
	}
}

// Generate sends prompt as a single user message and returns the first choice's text.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", &Error{StatusCode: http.StatusInternalServerError, Message: "OPENAI_API_KEY is not configured"}
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		ce := upstreamError(err)
		o.log.Error("completion_failed",
			zap.String("model", o.model),
			zap.Int("upstream_status", ce.StatusCode),
			zap.Error(err),
		)
		return "", ce
	}

	o.log.Info("completion_succeeded",
		zap.String("model", o.model),
		zap.Int("choices", len(resp.Choices)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Status reports key presence and a short preview.
func (o *OpenAI) Status() KeyStatus {
	return keyStatus(o.apiKey)
}

// newHTTPClient returns the client used for upstream calls. Requests are
// traced as children of the inbound request span.
func newHTTPClient(opts ...otelhttp.Option) *http.Client {
	return &http.Client{
		Timeout:   60 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
	}
}

func upstreamError(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}
	return &Error{StatusCode: http.StatusInternalServerError, Message: err.Error(), Err: err}
}
