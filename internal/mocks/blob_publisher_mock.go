package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/storage"
)

// MockBlobPublisher is a mock type for the BlobPublisher type
type MockBlobPublisher struct {
	mock.Mock
}

// Publish provides a mock function with given fields: ctx, path, data, contentType
func (_m *MockBlobPublisher) Publish(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	ret := _m.Called(ctx, path, data, contentType)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}
	return r0, ret.Error(1)
}

// Check provides a mock function
func (_m *MockBlobPublisher) Check() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockBlobPublisher creates a new instance of MockBlobPublisher.
// The first argument is typically a *testing.T value.
func NewMockBlobPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockBlobPublisher {
	m := &MockBlobPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ storage.BlobPublisher = (*MockBlobPublisher)(nil)
