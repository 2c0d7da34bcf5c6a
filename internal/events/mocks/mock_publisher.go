package mocks

import (
	"context"

	"blogeditor/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event model.LifecycleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
