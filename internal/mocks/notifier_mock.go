package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/messaging"
)

// MockCompletionNotifier is a mock type for the CompletionNotifier type
type MockCompletionNotifier struct {
	mock.Mock
}

// NotifyStoryReady provides a mock function with given fields: ctx, event
func (_m *MockCompletionNotifier) NotifyStoryReady(ctx context.Context, event messaging.StoryReadyEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

// Close provides a mock function
func (_m *MockCompletionNotifier) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockCompletionNotifier creates a new instance of MockCompletionNotifier.
// The first argument is typically a *testing.T value.
func NewMockCompletionNotifier(t interface {
	mock.TestingT
	Helper()
}) *MockCompletionNotifier {
	m := &MockCompletionNotifier{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ messaging.CompletionNotifier = (*MockCompletionNotifier)(nil)
