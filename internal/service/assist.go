package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"docsai/internal/completion"
	"docsai/internal/prompt"
)

var (
	ErrBusy           = errors.New("a response is already being generated")
	ErrPromptRequired = errors.New("prompt is required")
)

// AssistErrorMessage is what the panel shows when generation fails.
const AssistErrorMessage = "An error occurred while generating the response."

// AssistPanel is the AI side panel of one editor session. Only one request may
// be outstanding at a time.
type AssistPanel struct {
	mu      sync.Mutex
	docs    DocumentService
	gateway completion.Gateway
	log     *zap.Logger
	loading bool
	result  string
	failed  bool
}

func NewAssistPanel(docs DocumentService, gateway completion.Gateway, log *zap.Logger) *AssistPanel {
	if log == nil {
		log = zap.NewNop()
	}
	return &AssistPanel{docs: docs, gateway: gateway, log: log}
}

// PanelState is the panel as the client displays it.
type PanelState struct {
	Loading bool   `json:"loading"`
	Result  string `json:"result"`
	Error   bool   `json:"error"`
}

// Submit expands @mentions against the current documents and sends the prompt
// to the gateway. The lock is not held across the network call; the loading
// flag rejects concurrent submissions with ErrBusy. The recorded result is
// whatever completed last.
func (p *AssistPanel) Submit(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrPromptRequired
	}

	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return "", ErrBusy
	}
	p.loading = true
	p.mu.Unlock()

	text, err := p.generate(ctx, raw)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.result = AssistErrorMessage
		p.failed = true
		p.log.Error("assist_failed", zap.Error(err))
		return "", err
	}
	p.result = text
	p.failed = false
	return text, nil
}

func (p *AssistPanel) generate(ctx context.Context, raw string) (string, error) {
	docs, err := p.docs.List(ctx)
	if err != nil {
		return "", err
	}
	expanded := prompt.Expand(raw, prompt.FromDocuments(docs))
	return p.gateway.Generate(ctx, expanded)
}

// Result returns the last recorded response or error message.
func (p *AssistPanel) Result() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Loading reports whether a request is outstanding.
func (p *AssistPanel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *AssistPanel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PanelState{Loading: p.loading, Result: p.result, Error: p.failed}
}
