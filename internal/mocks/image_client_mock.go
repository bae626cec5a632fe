package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/service"
)

// MockImageClient is a mock type for the ImageClient type
type MockImageClient struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, prompt, refs
func (_m *MockImageClient) Generate(ctx context.Context, prompt string, refs []service.ReferenceImage) (*service.GeneratedImage, error) {
	ret := _m.Called(ctx, prompt, refs)

	var r0 *service.GeneratedImage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.GeneratedImage)
	}
	return r0, ret.Error(1)
}

// Check provides a mock function
func (_m *MockImageClient) Check() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockImageClient creates a new instance of MockImageClient.
// The first argument is typically a *testing.T value.
func NewMockImageClient(t interface {
	mock.TestingT
	Helper()
}) *MockImageClient {
	m := &MockImageClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.ImageClient = (*MockImageClient)(nil)
