package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/service"
)

// MockPageIllustrator is a mock type for the PageIllustrator type
type MockPageIllustrator struct {
	mock.Mock
}

// IllustratePage provides a mock function with given fields: ctx, job, preview
func (_m *MockPageIllustrator) IllustratePage(ctx context.Context, job service.PageJob, preview func(string)) (string, error) {
	ret := _m.Called(ctx, job, preview)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, service.PageJob, func(string)) string); ok {
		r0 = rf(ctx, job, preview)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}
	return r0, ret.Error(1)
}

// Check provides a mock function
func (_m *MockPageIllustrator) Check() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockPageIllustrator creates a new instance of MockPageIllustrator.
// The first argument is typically a *testing.T value.
func NewMockPageIllustrator(t interface {
	mock.TestingT
	Helper()
}) *MockPageIllustrator {
	m := &MockPageIllustrator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.PageIllustrator = (*MockPageIllustrator)(nil)
