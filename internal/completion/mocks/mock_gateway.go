package mocks

import (
	"context"

	"docsai/internal/completion"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Status() completion.KeyStatus {
	args := m.Called()
	return args.Get(0).(completion.KeyStatus)
}
