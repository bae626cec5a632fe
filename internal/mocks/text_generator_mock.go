package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/model"
	"storybook-server/internal/service"
)

// MockTextGenerator is a mock type for the TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

// GeneratePages provides a mock function with given fields: ctx, req
func (_m *MockTextGenerator) GeneratePages(ctx context.Context, req model.StoryRequest) ([]string, error) {
	ret := _m.Called(ctx, req)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// Check provides a mock function
func (_m *MockTextGenerator) Check() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockTextGenerator creates a new instance of MockTextGenerator.
// The first argument is typically a *testing.T value.
func NewMockTextGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.TextGenerator = (*MockTextGenerator)(nil)
