package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	gwMocks "docsai/internal/completion/mocks"
	"docsai/internal/model"
	svcMocks "docsai/internal/service/mocks"
)

func TestAssistPanel_SubmitExpandsMentions(t *testing.T) {
	ctx := context.Background()
	docs := new(svcMocks.MockDocumentService)
	docs.On("List", ctx).Return([]model.Document{{ID: "1", Title: "Spec", Content: "the plan"}}, nil)
	gw := new(gwMocks.MockGateway)
	gw.On("Generate", ctx, "Summarize Content of \"Spec\":\nthe plan\n please").Return("short", nil)
	p := NewAssistPanel(docs, gw, nil)

	text, err := p.Submit(ctx, "Summarize @Spec please")

	require.NoError(t, err)
	assert.Equal(t, "short", text)
	assert.Equal(t, "short", p.Result())
	assert.False(t, p.Loading())
	gw.AssertExpectations(t)
}

func TestAssistPanel_SubmitError(t *testing.T) {
	ctx := context.Background()
	docs := new(svcMocks.MockDocumentService)
	docs.On("List", ctx).Return([]model.Document{}, nil)
	gw := new(gwMocks.MockGateway)
	gw.On("Generate", ctx, "hi").Return("", errors.New("upstream down")).Once()
	gw.On("Generate", ctx, "hi").Return("recovered", nil).Once()
	p := NewAssistPanel(docs, gw, nil)

	_, err := p.Submit(ctx, "hi")
	assert.EqualError(t, err, "upstream down")
	assert.Equal(t, AssistErrorMessage, p.Result())
	assert.True(t, p.State().Error)

	text, err := p.Submit(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.False(t, p.State().Error)
}

func TestAssistPanel_EmptyPrompt(t *testing.T) {
	p := NewAssistPanel(new(svcMocks.MockDocumentService), new(gwMocks.MockGateway), nil)

	_, err := p.Submit(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrPromptRequired)
}

func TestAssistPanel_BusyWhileLoading(t *testing.T) {
	ctx := context.Background()
	docs := new(svcMocks.MockDocumentService)
	docs.On("List", ctx).Return([]model.Document{}, nil)
	release := make(chan struct{})
	gw := new(gwMocks.MockGateway)
	gw.On("Generate", ctx, "first").Run(func(mock.Arguments) { <-release }).Return("one", nil)
	p := NewAssistPanel(docs, gw, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(ctx, "first")
		done <- err
	}()
	require.Eventually(t, p.Loading, time.Second, time.Millisecond)

	_, err := p.Submit(ctx, "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "one", p.Result())
	assert.False(t, p.Loading())
	gw.AssertNotCalled(t, "Generate", ctx, "second")
}
